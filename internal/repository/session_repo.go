package repository

import (
	"context"
	"time"

	"github.com/moveos/scheduling-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionFilter narrows session listings. Zero values mean "no filter";
// Status defaults to scheduled at the service layer.
type SessionFilter struct {
	Date       *time.Time
	Category   string
	LocationID string
	Status     models.SessionStatus
	// StartsAfter and HasVacancy narrow the result set before pagination,
	// so a page of the public listing is never padded with sessions that
	// cannot be booked.
	StartsAfter *time.Time
	HasVacancy  bool
	Page        int
	Limit       int
}

type SessionRepository interface {
	Create(ctx context.Context, s *models.SessionInstance) error
	FindByID(ctx context.Context, id string) (*models.SessionInstance, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.SessionInstance, error)
	FindOverlapping(ctx context.Context, locationID string, start, end time.Time, excludeID string) (*models.SessionInstance, error)
	List(ctx context.Context, filter SessionFilter) ([]models.SessionInstance, int64, error)
	// ListPublic serves anonymous session discovery across tenants; the one
	// read path that deliberately skips the tenant filter.
	ListPublic(ctx context.Context, filter SessionFilter) ([]models.SessionInstance, int64, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *models.SessionInstance) error {
	if err := stampTenant(ctx, &s.TenantID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*models.SessionInstance, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var s models.SessionInstance
	if err := q.Preload("SessionType").Preload("Location").First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByIDForUpdate acquires a row-level lock on the session within the given
// transaction. All capacity accounting happens under this lock.
func (r *sessionRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.SessionInstance, error) {
	q, err := scoped(ctx, tx)
	if err != nil {
		return nil, err
	}
	var s models.SessionInstance
	if err := q.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindOverlapping returns a non-cancelled session at the location whose
// interval intersects [start, end). excludeID skips the instance itself when
// re-checking on update.
func (r *sessionRepository) FindOverlapping(ctx context.Context, locationID string, start, end time.Time, excludeID string) (*models.SessionInstance, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	q = q.Where("location_id = ? AND start_time < ? AND end_time > ? AND status <> ?",
		locationID, end, start, models.SessionCancelled)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var s models.SessionInstance
	if err := q.First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) List(ctx context.Context, filter SessionFilter) ([]models.SessionInstance, int64, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, 0, err
	}
	return r.list(q, filter)
}

func (r *sessionRepository) ListPublic(ctx context.Context, filter SessionFilter) ([]models.SessionInstance, int64, error) {
	return r.list(r.db.WithContext(ctx), filter)
}

func (r *sessionRepository) list(q *gorm.DB, filter SessionFilter) ([]models.SessionInstance, int64, error) {
	q = q.Model(&models.SessionInstance{})

	if filter.Status != "" {
		q = q.Where("session_instances.status = ?", filter.Status)
	}
	if filter.LocationID != "" {
		q = q.Where("location_id = ?", filter.LocationID)
	}
	if filter.Date != nil {
		dayStart := filter.Date.Truncate(24 * time.Hour)
		q = q.Where("start_time >= ? AND start_time < ?", dayStart, dayStart.Add(24*time.Hour))
	}
	if filter.Category != "" {
		q = q.Joins("JOIN session_types ON session_types.id = session_instances.session_type_id").
			Where("session_types.category = ?", filter.Category)
	}
	if filter.StartsAfter != nil {
		q = q.Where("start_time > ?", *filter.StartsAfter)
	}
	if filter.HasVacancy {
		seated := r.db.Model(&models.Booking{}).
			Select("COUNT(*)").
			Where("bookings.session_instance_id = session_instances.id").
			Where("bookings.status IN ?", []models.BookingStatus{models.StatusConfirmed, models.StatusAttended})
		q = q.Where("(capacity IS NULL OR capacity > (?))", seated)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var sessions []models.SessionInstance
	err := q.Preload("SessionType").Preload("Location").
		Order("start_time ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *sessionRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return err
	}
	return q.Model(&models.SessionInstance{}).Where("id = ?", id).Updates(fields).Error
}

func (r *sessionRepository) UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error {
	return r.UpdateFields(ctx, id, map[string]any{"status": status})
}
