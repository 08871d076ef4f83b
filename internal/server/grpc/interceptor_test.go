package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/memberkeeper/internal/common"
	"github.com/dmitrijs2005/memberkeeper/internal/logging"
	"github.com/dmitrijs2005/memberkeeper/internal/server/models"
	"github.com/dmitrijs2005/memberkeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakeGate struct {
	account *models.Account
	err     error
	got     string
	calls   int
}

func (f *fakeGate) Resolve(_ context.Context, authorization string) (*models.Account, error) {
	f.calls++
	f.got = authorization
	return f.account, f.err
}

func newTestServer(gate AccessGate) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", nopLogger{}, nil, gate)
}

func TestInterceptor_UnprotectedMethodSkipsGate(t *testing.T) {
	gate := &fakeGate{err: errors.New("must not be called")}
	s := newTestServer(gate)

	info := &grpc.UnaryServerInfo{FullMethod: RegisterFullMethod}
	handlerCalled := false
	h := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.accessGateInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled || resp != "ok" {
		t.Fatalf("handler not invoked properly: called=%v resp=%v", handlerCalled, resp)
	}
	if gate.calls != 0 {
		t.Fatalf("gate called %d times", gate.calls)
	}
}

func TestInterceptor_ProtectedAttachesAccount(t *testing.T) {
	acc := &models.Account{ID: "acc-1"}
	gate := &fakeGate{account: acc}
	s := newTestServer(gate)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer tok"))
	info := &grpc.UnaryServerInfo{FullMethod: WhoAmIFullMethod}

	var seen *models.Account
	h := func(ctx context.Context, req any) (any, error) {
		seen, _ = services.AccountFromContext(ctx)
		return "ok", nil
	}

	if _, err := s.accessGateInterceptor(ctx, nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gate.got != "Bearer tok" {
		t.Fatalf("gate received %q", gate.got)
	}
	if seen != acc {
		t.Fatalf("account not attached to context: %+v", seen)
	}
}

func TestInterceptor_ProtectedFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode codes.Code
		wantMsg  string
	}{
		{"missing", common.ErrAuthorizationRequired, codes.Unauthenticated, "Authorization token required"},
		{"rejected", common.ErrNotAuthorized, codes.Unauthenticated, "Request is not authorized"},
		{"gone", common.ErrAccountNotFound, codes.Unauthenticated, "User not found"},
		{"store down", errors.New("conn reset"), codes.Internal, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeGate{err: tt.err})
			info := &grpc.UnaryServerInfo{FullMethod: WhoAmIFullMethod}
			h := func(ctx context.Context, req any) (any, error) {
				t.Fatal("handler should not be called")
				return nil, nil
			}

			_, err := s.accessGateInterceptor(context.Background(), nil, info, h)
			st, ok := status.FromError(err)
			if !ok {
				t.Fatalf("expected status error, got %v", err)
			}
			if st.Code() != tt.wantCode || st.Message() != tt.wantMsg {
				t.Fatalf("got %v %q, want %v %q", st.Code(), st.Message(), tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestInterceptor_NoMetadataPassesEmptyValue(t *testing.T) {
	gate := &fakeGate{err: common.ErrAuthorizationRequired}
	s := newTestServer(gate)

	info := &grpc.UnaryServerInfo{FullMethod: WhoAmIFullMethod}
	_, _ = s.accessGateInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, nil
	})
	if gate.calls != 1 || gate.got != "" {
		t.Fatalf("gate calls=%d got=%q", gate.calls, gate.got)
	}
}
