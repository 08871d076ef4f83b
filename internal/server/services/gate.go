package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/memberkeeper/internal/common"
	"github.com/dmitrijs2005/memberkeeper/internal/logging"
	"github.com/dmitrijs2005/memberkeeper/internal/server/auth"
	"github.com/dmitrijs2005/memberkeeper/internal/server/models"
	"github.com/dmitrijs2005/memberkeeper/internal/server/repositories/accounts"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AccessGate resolves the account behind a request's authorization value.
// Each call is independent and keeps no state between requests.
type AccessGate struct {
	verifier TokenVerifier
	accounts accounts.Repository
	logger   logging.Logger
}

func NewAccessGate(v TokenVerifier, repo accounts.Repository, l logging.Logger) *AccessGate {
	return &AccessGate{verifier: v, accounts: repo, logger: l.With("module", "access_gate")}
}

// Resolve takes the raw authorization value (e.g. "Bearer <token>") and
// returns the account it identifies. Failures are common.ErrAuthorizationRequired
// when nothing was presented, common.ErrNotAuthorized for a rejected token and
// common.ErrAccountNotFound when the identity no longer resolves.
func (g *AccessGate) Resolve(ctx context.Context, authorization string) (*models.Account, error) {
	if strings.TrimSpace(authorization) == "" {
		return nil, common.ErrAuthorizationRequired
	}

	accountID, err := g.verifier.Verify(auth.BearerValue(authorization))
	if err != nil {
		reason := "unknown"
		var verr *auth.VerificationError
		if errors.As(err, &verr) {
			reason = string(verr.Kind)
		}
		g.logger.Warn(ctx, "token rejected", "reason", reason)
		return nil, common.ErrNotAuthorized
	}

	account, err := g.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			g.logger.Warn(ctx, "token identity not found", "account_id", accountID)
			return nil, common.ErrAccountNotFound
		}
		g.logger.Error(ctx, "lookup account by id failed", "error", err)
		return nil, fmt.Errorf("lookup account by id: %w", err)
	}

	g.logger.Debug(ctx, "access granted", "account_id", account.ID)
	return account, nil
}

type ctxKey string

const accountKey ctxKey = "account"

// ContextWithAccount attaches a resolved account to ctx.
func ContextWithAccount(ctx context.Context, a *models.Account) context.Context {
	return context.WithValue(ctx, accountKey, a)
}

// AccountFromContext returns the account attached by ContextWithAccount.
func AccountFromContext(ctx context.Context) (*models.Account, bool) {
	a, ok := ctx.Value(accountKey).(*models.Account)
	return a, ok && a != nil
}
