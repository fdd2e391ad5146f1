package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	staffDomain "microfin-backend/internal/domain/staff"
)

type StaffRepository struct{ db *gorm.DB }

func NewStaffRepository(db *gorm.DB) *StaffRepository { return &StaffRepository{db: db} }

func (r *StaffRepository) GetByStaffID(ctx context.Context, staffID string) (*staffDomain.Staff, error) {
	var out staffDomain.Staff
	res := r.db.WithContext(ctx).Where("staff_id = ?", staffID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, staffDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *StaffRepository) GetRegionalManager(ctx context.Context, region string) (*staffDomain.Staff, error) {
	var out staffDomain.Staff
	res := r.db.WithContext(ctx).
		Where("region = ? AND role = ?", region, staffDomain.RoleRegionalManager).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, staffDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}
