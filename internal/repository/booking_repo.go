package repository

import (
	"context"

	"github.com/moveos/scheduling-service/internal/models"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	// FindByIDForMember additionally scopes by owner, so another member's
	// booking id behaves as not-found.
	FindByIDForMember(ctx context.Context, id, memberID string) (*models.Booking, error)
	FindActiveByMemberAndSession(ctx context.Context, tx *gorm.DB, memberID, sessionID string) (*models.Booking, error)
	FindConfirmedByMemberAndSession(ctx context.Context, memberID, sessionID string) (*models.Booking, error)
	// CountActive counts bookings that hold a seat (confirmed + attended).
	CountActive(ctx context.Context, tx *gorm.DB, sessionID string) (int64, error)
	// CountActiveBySessions is deliberately unscoped: it backs the public
	// availability view and exposes aggregate seat counts only.
	CountActiveBySessions(ctx context.Context, sessionIDs []string) (map[string]int64, error)
	ListByMember(ctx context.Context, memberID string, status *models.BookingStatus) ([]models.Booking, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Booking, error)
	// TransitionStatus applies fields only while the booking still holds the
	// expected status, reporting whether a row changed. A false result means
	// a concurrent request moved the booking first; terminal statuses are
	// never overwritten.
	TransitionStatus(ctx context.Context, tx *gorm.DB, bookingID string, from models.BookingStatus, fields map[string]any) (bool, error)
	Transact(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	if err := stampTenant(ctx, &booking.TenantID); err != nil {
		return err
	}
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var booking models.Booking
	if err := q.Preload("SessionInstance").First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDForMember(ctx context.Context, id, memberID string) (*models.Booking, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var booking models.Booking
	err = q.Preload("SessionInstance").
		Where("member_id = ?", memberID).
		First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindActiveByMemberAndSession(ctx context.Context, tx *gorm.DB, memberID, sessionID string) (*models.Booking, error) {
	q, err := scoped(ctx, tx)
	if err != nil {
		return nil, err
	}
	var booking models.Booking
	err = q.Where("member_id = ? AND session_instance_id = ? AND status <> ?",
		memberID, sessionID, models.StatusCancelled).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindConfirmedByMemberAndSession(ctx context.Context, memberID, sessionID string) (*models.Booking, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var booking models.Booking
	err = q.Preload("SessionInstance").
		Where("member_id = ? AND session_instance_id = ? AND status = ?",
			memberID, sessionID, models.StatusConfirmed).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) CountActive(ctx context.Context, tx *gorm.DB, sessionID string) (int64, error) {
	q, err := scoped(ctx, tx)
	if err != nil {
		return 0, err
	}
	var count int64
	err = q.Model(&models.Booking{}).
		Where("session_instance_id = ? AND status IN ?", sessionID,
			[]models.BookingStatus{models.StatusConfirmed, models.StatusAttended}).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) CountActiveBySessions(ctx context.Context, sessionIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		SessionInstanceID string
		Total             int64
	}
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Select("session_instance_id, COUNT(*) AS total").
		Where("session_instance_id IN ? AND status IN ?", sessionIDs,
			[]models.BookingStatus{models.StatusConfirmed, models.StatusAttended}).
		Group("session_instance_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.SessionInstanceID] = row.Total
	}
	return counts, nil
}

func (r *bookingRepository) ListByMember(ctx context.Context, memberID string, status *models.BookingStatus) ([]models.Booking, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	q = q.Where("member_id = ?", memberID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var bookings []models.Booking
	if err := q.Preload("SessionInstance").Order("booked_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Booking, error) {
	q, err := scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var bookings []models.Booking
	err = q.Where("session_instance_id = ?", sessionID).
		Order("booked_at ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) TransitionStatus(ctx context.Context, tx *gorm.DB, bookingID string, from models.BookingStatus, fields map[string]any) (bool, error) {
	q, err := scoped(ctx, tx)
	if err != nil {
		return false, err
	}
	res := q.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, from).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
