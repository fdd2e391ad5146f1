package region

import "context"

type Repository interface {
	GetByName(ctx context.Context, name string) (*Region, error)
}
