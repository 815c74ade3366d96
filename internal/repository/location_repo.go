package repository

import (
	"context"

	"github.com/moveos/scheduling-service/internal/models"
	"gorm.io/gorm"
)

type LocationRepository interface {
	Create(ctx context.Context, l *models.Location) error
	FindByID(ctx context.Context, id string) (*models.Location, error)
	FindByName(ctx context.Context, name, excludeID string) (*models.Location, error)
	ListActive(ctx context.Context) ([]models.Location, error)
	// ListActivePublic serves anonymous catalog browsing and intentionally
	// skips the tenant filter.
	ListActivePublic(ctx context.Context) ([]models.Location, error)
	Save(ctx context.Context, l *models.Location) error
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, l *models.Location) error {
	if err := stampTenant(ctx, &l.TenantID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *locationRepository) FindByID(ctx context.Context, id string) (*models.Location, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var l models.Location
	if err := q.First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *locationRepository) FindByName(ctx context.Context, name, excludeID string) (*models.Location, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	q = q.Where("name = ?", name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var l models.Location
	if err := q.First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *locationRepository) ListActive(ctx context.Context) ([]models.Location, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var locations []models.Location
	if err := q.Where("active = ?", true).Order("name ASC").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *locationRepository) ListActivePublic(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *locationRepository) Save(ctx context.Context, l *models.Location) error {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return err
	}
	return q.Model(l).Where("id = ?", l.ID).Updates(map[string]any{
		"name":     l.Name,
		"address":  l.Address,
		"capacity": l.Capacity,
		"timezone": l.Timezone,
		"active":   l.Active,
	}).Error
}
