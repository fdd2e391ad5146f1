package regionmock

import (
	"context"

	domain "microfin-backend/internal/domain/region"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByNameFn func(ctx context.Context, name string) (*domain.Region, error)
}

func (m *Repo) GetByName(ctx context.Context, name string) (*domain.Region, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, name)
	}
	return nil, domain.ErrNotFound
}
