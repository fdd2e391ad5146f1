package region

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("region not found")

// Region groups districts under one regional office.
type Region struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	Name      string    `gorm:"size:64;uniqueIndex:ux_regions_name" json:"name"`
	Districts []string  `gorm:"serializer:json" json:"districts"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Region) TableName() string { return "regions" }

// Covers reports whether the district belongs to this region.
func (r *Region) Covers(district string) bool {
	for _, d := range r.Districts {
		if d == district {
			return true
		}
	}
	return false
}
