package repository

import (
	"context"

	"github.com/moveos/scheduling-service/internal/models"
	"gorm.io/gorm"
)

type MovementRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.MovementEvent) error
	ListByMember(ctx context.Context, memberID string, limit int) ([]models.MovementEvent, error)
}

type movementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Create(ctx context.Context, tx *gorm.DB, event *models.MovementEvent) error {
	if err := stampTenant(ctx, &event.TenantID); err != nil {
		return err
	}
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(event).Error
}

func (r *movementRepository) ListByMember(ctx context.Context, memberID string, limit int) ([]models.MovementEvent, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	var events []models.MovementEvent
	err = q.Where("member_id = ?", memberID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
