package repository

import (
	"context"

	"github.com/moveos/scheduling-service/internal/models"
	"gorm.io/gorm"
)

type WaitlistRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.WaitlistEntry) error
	FindByMemberAndSession(ctx context.Context, tx *gorm.DB, memberID, sessionID string) (*models.WaitlistEntry, error)
	CountBySession(ctx context.Context, tx *gorm.DB, sessionID string) (int64, error)
	// ListBySession returns entries in queue order (position, then joinedAt
	// as a tiebreak while positions are being rewritten).
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]models.WaitlistEntry, error)
	First(ctx context.Context, tx *gorm.DB, sessionID string) (*models.WaitlistEntry, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	UpdatePosition(ctx context.Context, tx *gorm.DB, id string, position int) error
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

// handle falls back to the base connection when no transaction is supplied.
func (r *waitlistRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *waitlistRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.WaitlistEntry) error {
	if err := stampTenant(ctx, &entry.TenantID); err != nil {
		return err
	}
	return r.handle(tx).WithContext(ctx).Create(entry).Error
}

func (r *waitlistRepository) FindByMemberAndSession(ctx context.Context, tx *gorm.DB, memberID, sessionID string) (*models.WaitlistEntry, error) {
	q, err := scoped(ctx, r.handle(tx))
	if err != nil {
		return nil, err
	}
	var entry models.WaitlistEntry
	err = q.Where("member_id = ? AND session_instance_id = ?", memberID, sessionID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *waitlistRepository) CountBySession(ctx context.Context, tx *gorm.DB, sessionID string) (int64, error) {
	q, err := scoped(ctx, r.handle(tx))
	if err != nil {
		return 0, err
	}
	var count int64
	err = q.Model(&models.WaitlistEntry{}).
		Where("session_instance_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (r *waitlistRepository) ListBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]models.WaitlistEntry, error) {
	q, err := scoped(ctx, r.handle(tx))
	if err != nil {
		return nil, err
	}
	var entries []models.WaitlistEntry
	err = q.Where("session_instance_id = ?", sessionID).
		Order("position ASC, joined_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *waitlistRepository) First(ctx context.Context, tx *gorm.DB, sessionID string) (*models.WaitlistEntry, error) {
	q, err := scoped(ctx, r.handle(tx))
	if err != nil {
		return nil, err
	}
	var entry models.WaitlistEntry
	err = q.Where("session_instance_id = ?", sessionID).
		Order("position ASC, joined_at ASC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *waitlistRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	q, err := scoped(ctx, r.handle(tx))
	if err != nil {
		return err
	}
	return q.Delete(&models.WaitlistEntry{}, "id = ?", id).Error
}

func (r *waitlistRepository) UpdatePosition(ctx context.Context, tx *gorm.DB, id string, position int) error {
	q, err := scoped(ctx, r.handle(tx))
	if err != nil {
		return err
	}
	return q.Model(&models.WaitlistEntry{}).Where("id = ?", id).
		Update("position", position).Error
}
