package staffmock

import (
	"context"

	domain "microfin-backend/internal/domain/staff"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByStaffIDFn       func(ctx context.Context, staffID string) (*domain.Staff, error)
	GetRegionalManagerFn func(ctx context.Context, region string) (*domain.Staff, error)
}

func (m *Repo) GetByStaffID(ctx context.Context, staffID string) (*domain.Staff, error) {
	if m.GetByStaffIDFn != nil {
		return m.GetByStaffIDFn(ctx, staffID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetRegionalManager(ctx context.Context, region string) (*domain.Staff, error) {
	if m.GetRegionalManagerFn != nil {
		return m.GetRegionalManagerFn(ctx, region)
	}
	return nil, domain.ErrNotFound
}
