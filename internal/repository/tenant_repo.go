package repository

import (
	"context"

	"github.com/moveos/scheduling-service/internal/models"
	"gorm.io/gorm"
)

// TenantRepository is deliberately unscoped: resolving a tenant is the one
// lookup that happens before a tenant context exists.
type TenantRepository interface {
	Create(ctx context.Context, t *models.Tenant) error
	FindByID(ctx context.Context, id string) (*models.Tenant, error)
	FindByCode(ctx context.Context, code string) (*models.Tenant, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type tenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(ctx context.Context, t *models.Tenant) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tenantRepository) FindByID(ctx context.Context, id string) (*models.Tenant, error) {
	var t models.Tenant
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tenantRepository) FindByCode(ctx context.Context, code string) (*models.Tenant, error) {
	var t models.Tenant
	if err := r.db.WithContext(ctx).First(&t, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tenantRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tenant{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
