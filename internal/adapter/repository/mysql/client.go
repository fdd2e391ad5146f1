package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	clientDomain "microfin-backend/internal/domain/client"
)

type ClientRepository struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) *ClientRepository { return &ClientRepository{db: db} }

func (r *ClientRepository) GetByClientID(ctx context.Context, clientID string) (*clientDomain.Client, error) {
	var out clientDomain.Client
	res := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, clientDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}
