package clientmock

import (
	"context"

	domain "microfin-backend/internal/domain/client"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByClientIDFn func(ctx context.Context, clientID string) (*domain.Client, error)
}

func (m *Repo) GetByClientID(ctx context.Context, clientID string) (*domain.Client, error) {
	if m.GetByClientIDFn != nil {
		return m.GetByClientIDFn(ctx, clientID)
	}
	return nil, domain.ErrNotFound
}
