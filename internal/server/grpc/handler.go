package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/memberkeeper/internal/common"
	"github.com/dmitrijs2005/memberkeeper/internal/server/models"
	"github.com/dmitrijs2005/memberkeeper/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.accounts.Register(ctx, models.RegistrationFields{
		Name:             stringField(req, "name"),
		Email:            stringField(req, "email"),
		Password:         stringField(req, "password"),
		PhoneNumber:      stringField(req, "phone_number"),
		Gender:           stringField(req, "gender"),
		DateOfBirth:      stringField(req, "date_of_birth"),
		MembershipStatus: stringField(req, "membership_status"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return s.reply(ctx, authReply{User: res.Account.View(), Token: res.Token})
}

func (s *GRPCServer) Authenticate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.accounts.Authenticate(ctx, stringField(req, "email"), stringField(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}
	return s.reply(ctx, authReply{User: res.Account.View(), Token: res.Token})
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	account, ok := services.AccountFromContext(ctx)
	if !ok {
		return nil, toStatus(common.ErrAuthorizationRequired)
	}
	return s.reply(ctx, meReply{User: account.View()})
}

type authReply struct {
	User  models.AccountView `json:"user"`
	Token string             `json:"token"`
}

type meReply struct {
	User models.AccountView `json:"user"`
}

// reply converts v to a Struct through its JSON form so both transports
// share one wire shape.
func (s *GRPCServer) reply(ctx context.Context, v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, s.internal(ctx, fmt.Errorf("encode reply: %w", err))
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, s.internal(ctx, fmt.Errorf("encode reply: %w", err))
	}
	return out, nil
}

func (s *GRPCServer) internal(ctx context.Context, err error) error {
	s.logger.Error(ctx, "reply failed", "error", err)
	return toStatus(err)
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// toStatus maps an error to a gRPC status by kind. Infrastructure details
// are not sent to the caller.
func toStatus(err error) error {
	switch common.KindOf(err) {
	case common.KindValidation, common.KindAuthentication:
		return status.Error(codes.InvalidArgument, err.Error())
	case common.KindConflict:
		return status.Error(codes.AlreadyExists, err.Error())
	case common.KindAuthorization:
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}
