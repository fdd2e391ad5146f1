package client

import "context"

// Repository is a read-only directory lookup: "not found" is ErrNotFound,
// distinct from infrastructure failures.
type Repository interface {
	GetByClientID(ctx context.Context, clientID string) (*Client, error)
}
