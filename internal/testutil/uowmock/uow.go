package uowmock

import (
	"context"

	"microfin-backend/internal/domain/loan"
	"microfin-backend/internal/domain/uow"
)

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanTxFn func(ctx context.Context, applicationID string, fn func(r uow.Repos, l *loan.Loan) error) error
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return fn(uow.Repos{})
}

func (m *UoW) WithinLoanTx(ctx context.Context, applicationID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	if m.WithinLoanTxFn != nil {
		return m.WithinLoanTxFn(ctx, applicationID, fn)
	}
	return loan.ErrNotFound
}

// Passthrough builds a UoW that hands fn the given repos without any real
// transaction, locking the loan via the repos' ForUpdate lookup.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(ctx context.Context, fn func(r uow.Repos) error) error {
			return fn(r)
		},
		WithinLoanTxFn: func(ctx context.Context, applicationID string, fn func(r uow.Repos, l *loan.Loan) error) error {
			l, err := r.Loans.GetByApplicationIDForUpdate(ctx, applicationID)
			if err != nil {
				return err
			}
			return fn(r, l)
		},
	}
}
