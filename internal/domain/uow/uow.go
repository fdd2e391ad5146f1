package uow

import (
	"context"

	"microfin-backend/internal/domain/client"
	"microfin-backend/internal/domain/loan"
	"microfin-backend/internal/domain/region"
	"microfin-backend/internal/domain/staff"
)

type Repos struct {
	Loans   loan.Repository
	Clients client.Repository
	Staff   staff.Repository
	Regions region.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, applicationID string, fn func(r Repos, l *loan.Loan) error) error
}
