package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	loanDomain "microfin-backend/internal/domain/loan"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	err := r.db.WithContext(ctx).Create(l).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return loanDomain.ErrDuplicateApplicationID
	}
	return err
}

func (r *LoanRepository) GetByApplicationID(ctx context.Context, applicationID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *LoanRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ?", applicationID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *LoanRepository) GetOpenByClientID(ctx context.Context, clientID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("client_id = ? AND stage IN ?", clientID, loanDomain.OpenStages()).
		Order("id DESC").
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *LoanRepository) CountBackedByGuarantor(ctx context.Context, guarantorID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("(guarantor_id = ? OR secondary_guarantor_id = ?) AND stage IN ?",
			guarantorID, guarantorID, loanDomain.GuarantorLockStages()).
		Count(&n).Error
	return n, err
}

func (r *LoanRepository) HighestApplicationID(ctx context.Context, prefix string) (string, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Select("application_id").
		Where("application_id LIKE ?", prefix+"%").
		Order("application_id DESC").
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if res.Error != nil {
		return "", res.Error
	}
	return out.ApplicationID, nil
}

func (r *LoanRepository) ListByAgentID(ctx context.Context, agentID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).Where("agent_id = ?", agentID).Order("id DESC").Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListByRegion(ctx context.Context, region string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).Where("region = ?", region).Order("id DESC").Find(&out).Error
	return out, err
}

func (r *LoanRepository) List(ctx context.Context) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).Order("id DESC").Find(&out).Error
	return out, err
}

// Save is a compare-and-swap on the revision column: the UPDATE only lands
// when nobody else bumped the revision since our read. On success the
// in-memory revision is advanced to match the row.
func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	prev := l.Revision
	l.Revision = prev + 1
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("id = ? AND revision = ?", l.ID, prev).
		Select("*").
		Omit("id", "created_at").
		Updates(l)
	if res.Error != nil {
		l.Revision = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		l.Revision = prev
		return loanDomain.ErrStaleRecord
	}
	return nil
}
