// Package client talks to the credentials.v1.AccountService gRPC API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/memberkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName        = "credentials.v1.AccountService"
	registerMethod     = "/" + serviceName + "/Register"
	authenticateMethod = "/" + serviceName + "/Authenticate"
	whoAmIMethod       = "/" + serviceName + "/WhoAmI"
)

// ErrNotLoggedIn is returned by WhoAmI before a successful Register or Login.
var ErrNotLoggedIn = errors.New("not logged in")

// Account is the public view of an account as returned by the server.
type Account struct {
	ID               string `json:"_id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phone_number"`
	Gender           string `json:"gender"`
	DateOfBirth      string `json:"date_of_birth"`
	MembershipStatus string `json:"membership_status"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
}

// Registration carries the fields of a sign-up request.
type Registration struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	PhoneNumber      string `json:"phone_number"`
	Gender           string `json:"gender"`
	DateOfBirth      string `json:"date_of_birth"`
	MembershipStatus string `json:"membership_status"`
}

type authReply struct {
	User  Account `json:"user"`
	Token string  `json:"token"`
}

type meReply struct {
	User Account `json:"user"`
}

// GRPCClient keeps the connection and the token of the current session.
// It is not safe for concurrent use.
type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	token       string
}

// NewGRPCClient creates a client for endpointURL. Without options the
// connection uses insecure transport credentials.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpointURL, err)
	}
	return &GRPCClient{endpointURL: endpointURL, conn: conn}, nil
}

// Register creates an account and keeps the issued token.
func (c *GRPCClient) Register(ctx context.Context, r Registration) (*Account, error) {
	var out authReply
	if err := c.call(ctx, registerMethod, r, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out.User, nil
}

// Login authenticates with email and password and keeps the issued token.
func (c *GRPCClient) Login(ctx context.Context, email, password string) (*Account, error) {
	req := map[string]string{"email": email, "password": password}
	var out authReply
	if err := c.call(ctx, authenticateMethod, req, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out.User, nil
}

// WhoAmI returns the account bound to the current token.
func (c *GRPCClient) WhoAmI(ctx context.Context) (*Account, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	ctx = metadata.AppendToOutgoingContext(ctx, common.AuthorizationMetadataKey, "Bearer "+c.token)

	reply := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, whoAmIMethod, &emptypb.Empty{}, reply); err != nil {
		return nil, remoteError(err)
	}
	var out meReply
	if err := decode(reply, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// LoggedIn reports whether a token is held.
func (c *GRPCClient) LoggedIn() bool { return c.token != "" }

// Logout forgets the token.
func (c *GRPCClient) Logout() { c.token = "" }

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) call(ctx context.Context, method string, in, out any) error {
	req, err := encode(in)
	if err != nil {
		return err
	}
	reply := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, method, req, reply); err != nil {
		return remoteError(err)
	}
	return decode(reply, out)
}

func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return s, nil
}

func decode(s *structpb.Struct, v any) error {
	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

// remoteError strips the gRPC envelope so the user sees the server message.
func remoteError(err error) error {
	if st, ok := status.FromError(err); ok {
		return errors.New(st.Message())
	}
	return err
}
