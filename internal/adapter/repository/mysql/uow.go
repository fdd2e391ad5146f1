package mysql

import (
	"context"

	"gorm.io/gorm"

	"microfin-backend/internal/domain/loan"
	"microfin-backend/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:   &LoanRepository{db: tx},
		Clients: &ClientRepository{db: tx},
		Staff:   &StaffRepository{db: tx},
		Regions: &RegionRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, applicationID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the loan row up-front to serialize racing transitions
		l, err := r.Loans.GetByApplicationIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
