package repository

import (
	"context"

	"github.com/moveos/scheduling-service/internal/models"
	"gorm.io/gorm"
)

type SessionTypeRepository interface {
	Create(ctx context.Context, st *models.SessionType) error
	FindByID(ctx context.Context, id string) (*models.SessionType, error)
	FindByName(ctx context.Context, name, excludeID string) (*models.SessionType, error)
	ListActive(ctx context.Context) ([]models.SessionType, error)
	Save(ctx context.Context, st *models.SessionType) error
}

type sessionTypeRepository struct {
	db *gorm.DB
}

func NewSessionTypeRepository(db *gorm.DB) SessionTypeRepository {
	return &sessionTypeRepository{db: db}
}

func (r *sessionTypeRepository) Create(ctx context.Context, st *models.SessionType) error {
	if err := stampTenant(ctx, &st.TenantID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(st).Error
}

func (r *sessionTypeRepository) FindByID(ctx context.Context, id string) (*models.SessionType, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var st models.SessionType
	if err := q.First(&st, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

// FindByName backs the name-unique-per-tenant check. excludeID is empty on
// create and the record's own id on rename.
func (r *sessionTypeRepository) FindByName(ctx context.Context, name, excludeID string) (*models.SessionType, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	q = q.Where("name = ?", name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var st models.SessionType
	if err := q.First(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *sessionTypeRepository) ListActive(ctx context.Context) ([]models.SessionType, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var types []models.SessionType
	if err := q.Where("active = ?", true).Order("name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *sessionTypeRepository) Save(ctx context.Context, st *models.SessionType) error {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return err
	}
	return q.Model(st).Where("id = ?", st.ID).Updates(map[string]any{
		"name":             st.Name,
		"category":         st.Category,
		"duration_minutes": st.DurationMinutes,
		"max_capacity":     st.MaxCapacity,
		"difficulty":       st.Difficulty,
		"active":           st.Active,
	}).Error
}
