// Package services contains the server-side business logic: account
// registration and authentication (AccountService) and resolution of the
// caller behind a bearer token (AccessGate).
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/memberkeeper/internal/common"
	"github.com/dmitrijs2005/memberkeeper/internal/logging"
	"github.com/dmitrijs2005/memberkeeper/internal/server/models"
	"github.com/dmitrijs2005/memberkeeper/internal/server/repositories/accounts"
	"github.com/google/uuid"
)

type RegistrationValidator interface {
	Validate(f models.RegistrationFields) (models.Registration, error)
}

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, digest string) (bool, error)
}

type TokenIssuer interface {
	Issue(accountID string) (string, error)
}

// AuthResult is returned by a successful Register or Authenticate.
type AuthResult struct {
	Account *models.Account
	Token   string
}

// dummyPassword is hashed when the service is built and verified against
// when the email is unknown, so that both failing login paths cost one hash
// verification.
const dummyPassword = "memberkeeper-dummy-password"

type AccountService struct {
	accounts  accounts.Repository
	validator RegistrationValidator
	hasher    PasswordHasher
	issuer    TokenIssuer
	logger    logging.Logger
	newID     func() string

	dummyMu   sync.Mutex
	dummyHash string
}

func NewAccountService(repo accounts.Repository, v RegistrationValidator, h PasswordHasher, i TokenIssuer, l logging.Logger) *AccountService {
	s := &AccountService{
		accounts:  repo,
		validator: v,
		hasher:    h,
		issuer:    i,
		logger:    l.With("module", "account_service"),
		newID:     uuid.NewString,
	}
	s.dummyDigest(context.Background())
	return s
}

// Register validates f, stores a new account with a hashed password and
// returns it together with a fresh token.
func (s *AccountService) Register(ctx context.Context, f models.RegistrationFields) (*AuthResult, error) {
	reg, err := s.validator.Validate(f)
	if err != nil {
		return nil, err
	}

	_, err = s.accounts.FindByEmail(ctx, reg.Email)
	switch {
	case err == nil:
		s.logger.Info(ctx, "registration rejected", "reason", "duplicate email", "email", logging.MaskEmail(reg.Email))
		return nil, common.ErrAccountExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, s.infra(ctx, "lookup account by email", err)
	}

	hash, err := s.hasher.Hash(ctx, reg.Password)
	if err != nil {
		return nil, s.infra(ctx, "hash password", err)
	}

	account, err := s.accounts.Create(ctx, &models.Account{
		ID:               s.newID(),
		Name:             reg.Name,
		Email:            reg.Email,
		PasswordHash:     hash,
		PhoneNumber:      reg.PhoneNumber,
		Gender:           reg.Gender,
		DateOfBirth:      reg.DateOfBirth,
		MembershipStatus: reg.MembershipStatus,
	})
	if err != nil {
		if errors.Is(err, common.ErrAccountExists) {
			s.logger.Info(ctx, "registration rejected", "reason", "duplicate email on insert", "email", logging.MaskEmail(reg.Email))
			return nil, common.ErrAccountExists
		}
		return nil, s.infra(ctx, "create account", err)
	}

	token, err := s.issuer.Issue(account.ID)
	if err != nil {
		return nil, s.infra(ctx, "issue token", err)
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)
	return &AuthResult{Account: account, Token: token}, nil
}

// Authenticate checks password against the account stored for email. Unknown
// emails and wrong passwords fail with the same common.ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, common.ErrMissingCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, s.infra(ctx, "lookup account by email", err)
		}
		s.burnVerification(ctx, password)
		s.logger.Info(ctx, "login rejected", "email", logging.MaskEmail(email))
		return nil, common.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(ctx, password, account.PasswordHash)
	if err != nil {
		return nil, s.infra(ctx, "verify password", err)
	}
	if !ok {
		s.logger.Info(ctx, "login rejected", "email", logging.MaskEmail(email))
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(account.ID)
	if err != nil {
		return nil, s.infra(ctx, "issue token", err)
	}

	s.logger.Info(ctx, "account authenticated", "account_id", account.ID)
	return &AuthResult{Account: account, Token: token}, nil
}

func (s *AccountService) burnVerification(ctx context.Context, password string) {
	if digest := s.dummyDigest(ctx); digest != "" {
		_, _ = s.hasher.Verify(ctx, password, digest)
	}
}

// dummyDigest returns the digest of dummyPassword, hashing it if no earlier
// attempt succeeded. A failed attempt is not cached. The caller's
// cancellation does not apply to the hash.
func (s *AccountService) dummyDigest(ctx context.Context) string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash == "" {
		h, err := s.hasher.Hash(context.WithoutCancel(ctx), dummyPassword)
		if err != nil {
			s.logger.Warn(ctx, "dummy hash unavailable", "error", err)
			return ""
		}
		s.dummyHash = h
	}
	return s.dummyHash
}

func (s *AccountService) infra(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, op+" failed", "error", err)
	return fmt.Errorf("%s: %w", op, err)
}
