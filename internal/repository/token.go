package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"worklane/internal/models"
)

// TokenRepository tracks issued session tokens. A JWT is only honored while
// its row exists here, which makes logout an actual revocation.
type TokenRepository interface {
	Create(ctx context.Context, token *models.Token) error
	Get(ctx context.Context, token string) (*models.Token, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *models.Token) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	return nil
}

func (r *tokenRepository) Get(ctx context.Context, token string) (*models.Token, error) {
	var t models.Token
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("session not found")
		}
		return nil, fmt.Errorf("fetching token: %w", err)
	}
	return &t, nil
}

func (r *tokenRepository) Delete(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Token{}).Error; err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}

// DeleteExpired prunes tokens past their expiry. Called opportunistically
// rather than from a scheduler.
func (r *tokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.Token{})
	if res.Error != nil {
		return 0, fmt.Errorf("pruning expired tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
