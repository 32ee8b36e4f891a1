// Package repomanager builds the storage backend selected by configuration
// and hands out repositories bound to it.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/idkeeper/internal/server/repositories/users"
)

// Storage modes accepted by New.
const (
	ModePostgres = "postgres"
	ModeMemory   = "memory"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Close()
}

// InMemoryRepositoryManager serves process-local repositories. Migrations are
// a no-op.
type InMemoryRepositoryManager struct {
	users *users.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewInMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *InMemoryRepositoryManager) Close() {}
