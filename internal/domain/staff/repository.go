package staff

import "context"

type Repository interface {
	GetByStaffID(ctx context.Context, staffID string) (*Staff, error)
	// GetRegionalManager returns the manager assigned to a region.
	GetRegionalManager(ctx context.Context, region string) (*Staff, error)
}
