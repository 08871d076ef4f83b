// Package repomanager selects the account store backend and owns its
// lifecycle: opening connections, running schema migrations and closing.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/memberkeeper/internal/server/repositories/accounts"
)

type RepositoryManager interface {
	Accounts() accounts.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}

// New returns a PostgreSQL-backed manager when dsn is set and an in-memory
// one otherwise.
func New(ctx context.Context, dsn string) (RepositoryManager, error) {
	if dsn == "" {
		return NewMemoryRepositoryManager(), nil
	}
	m, err := NewPostgresRepositoryManager(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return m, nil
}
