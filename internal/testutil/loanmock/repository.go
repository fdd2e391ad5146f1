package loanmock

import (
	"context"

	domain "microfin-backend/internal/domain/loan"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only wire the methods your test needs; the rest default sanely.
type Repo struct {
	CreateFn                      func(ctx context.Context, l *domain.Loan) error
	GetByApplicationIDFn          func(ctx context.Context, applicationID string) (*domain.Loan, error)
	GetByApplicationIDForUpdateFn func(ctx context.Context, applicationID string) (*domain.Loan, error)
	GetOpenByClientIDFn           func(ctx context.Context, clientID string) (*domain.Loan, error)
	CountBackedByGuarantorFn      func(ctx context.Context, guarantorID string) (int64, error)
	HighestApplicationIDFn        func(ctx context.Context, prefix string) (string, error)
	ListByAgentIDFn               func(ctx context.Context, agentID string) ([]domain.Loan, error)
	ListByRegionFn                func(ctx context.Context, region string) ([]domain.Loan, error)
	ListFn                        func(ctx context.Context) ([]domain.Loan, error)
	SaveFn                        func(ctx context.Context, l *domain.Loan) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.Loan, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*domain.Loan, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetOpenByClientID(ctx context.Context, clientID string) (*domain.Loan, error) {
	if m.GetOpenByClientIDFn != nil {
		return m.GetOpenByClientIDFn(ctx, clientID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) CountBackedByGuarantor(ctx context.Context, guarantorID string) (int64, error) {
	if m.CountBackedByGuarantorFn != nil {
		return m.CountBackedByGuarantorFn(ctx, guarantorID)
	}
	return 0, nil
}

func (m *Repo) HighestApplicationID(ctx context.Context, prefix string) (string, error) {
	if m.HighestApplicationIDFn != nil {
		return m.HighestApplicationIDFn(ctx, prefix)
	}
	return "", nil
}

func (m *Repo) ListByAgentID(ctx context.Context, agentID string) ([]domain.Loan, error) {
	if m.ListByAgentIDFn != nil {
		return m.ListByAgentIDFn(ctx, agentID)
	}
	return nil, nil
}

func (m *Repo) ListByRegion(ctx context.Context, region string) ([]domain.Loan, error) {
	if m.ListByRegionFn != nil {
		return m.ListByRegionFn(ctx, region)
	}
	return nil, nil
}

func (m *Repo) List(ctx context.Context) ([]domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}
