package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	regionDomain "microfin-backend/internal/domain/region"
)

type RegionRepository struct{ db *gorm.DB }

func NewRegionRepository(db *gorm.DB) *RegionRepository { return &RegionRepository{db: db} }

func (r *RegionRepository) GetByName(ctx context.Context, name string) (*regionDomain.Region, error) {
	var out regionDomain.Region
	res := r.db.WithContext(ctx).Where("name = ?", name).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, regionDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}
