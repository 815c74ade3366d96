package service

import (
	"context"
	"time"

	"github.com/moveos/scheduling-service/internal/models"
	"github.com/moveos/scheduling-service/internal/repository"
	"github.com/moveos/scheduling-service/internal/tenant"
	"gorm.io/gorm"
)

const (
	testTenantID  = "11111111-1111-1111-1111-111111111111"
	testSessionID = "22222222-2222-2222-2222-222222222222"
	testMemberID  = "33333333-3333-3333-3333-333333333333"
)

func testCtx() context.Context {
	return tenant.WithTenant(context.Background(), testTenantID)
}

func futureSession(capacity *int) *models.SessionInstance {
	return &models.SessionInstance{
		ID:        testSessionID,
		TenantID:  testTenantID,
		StartTime: time.Now().Add(24 * time.Hour),
		EndTime:   time.Now().Add(25 * time.Hour),
		Capacity:  capacity,
		Status:    models.SessionScheduled,
	}
}

func intPtr(n int) *int { return &n }

// --- Mock BookingRepository ---
//
// Unset fields fall back to an empty store: finds miss, counts are zero,
// writes succeed, Transact runs the callback without a real transaction.

type mockBookingRepo struct {
	createFn                func(ctx context.Context, tx *gorm.DB, b *models.Booking) error
	findByIDFn              func(ctx context.Context, id string) (*models.Booking, error)
	findByIDForMemberFn     func(ctx context.Context, id, memberID string) (*models.Booking, error)
	findActiveFn            func(ctx context.Context, tx *gorm.DB, memberID, sessionID string) (*models.Booking, error)
	findConfirmedFn         func(ctx context.Context, memberID, sessionID string) (*models.Booking, error)
	countActiveFn           func(ctx context.Context, tx *gorm.DB, sessionID string) (int64, error)
	countActiveBySessionsFn func(ctx context.Context, sessionIDs []string) (map[string]int64, error)
	listByMemberFn          func(ctx context.Context, memberID string, status *models.BookingStatus) ([]models.Booking, error)
	listBySessionFn         func(ctx context.Context, sessionID string) ([]models.Booking, error)
	transitionStatusFn      func(ctx context.Context, tx *gorm.DB, bookingID string, from models.BookingStatus, fields map[string]any) (bool, error)
	transactFn              func(ctx context.Context, fn func(tx *gorm.DB) error) error
}

func (m *mockBookingRepo) Create(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, b)
	}
	if b.ID == "" {
		b.ID = "booking-1"
	}
	return nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) FindByIDForMember(ctx context.Context, id, memberID string) (*models.Booking, error) {
	if m.findByIDForMemberFn != nil {
		return m.findByIDForMemberFn(ctx, id, memberID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) FindActiveByMemberAndSession(ctx context.Context, tx *gorm.DB, memberID, sessionID string) (*models.Booking, error) {
	if m.findActiveFn != nil {
		return m.findActiveFn(ctx, tx, memberID, sessionID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) FindConfirmedByMemberAndSession(ctx context.Context, memberID, sessionID string) (*models.Booking, error) {
	if m.findConfirmedFn != nil {
		return m.findConfirmedFn(ctx, memberID, sessionID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) CountActive(ctx context.Context, tx *gorm.DB, sessionID string) (int64, error) {
	if m.countActiveFn != nil {
		return m.countActiveFn(ctx, tx, sessionID)
	}
	return 0, nil
}

func (m *mockBookingRepo) CountActiveBySessions(ctx context.Context, sessionIDs []string) (map[string]int64, error) {
	if m.countActiveBySessionsFn != nil {
		return m.countActiveBySessionsFn(ctx, sessionIDs)
	}
	return map[string]int64{}, nil
}

func (m *mockBookingRepo) ListByMember(ctx context.Context, memberID string, status *models.BookingStatus) ([]models.Booking, error) {
	if m.listByMemberFn != nil {
		return m.listByMemberFn(ctx, memberID, status)
	}
	return nil, nil
}

func (m *mockBookingRepo) ListBySession(ctx context.Context, sessionID string) ([]models.Booking, error) {
	if m.listBySessionFn != nil {
		return m.listBySessionFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockBookingRepo) TransitionStatus(ctx context.Context, tx *gorm.DB, bookingID string, from models.BookingStatus, fields map[string]any) (bool, error) {
	if m.transitionStatusFn != nil {
		return m.transitionStatusFn(ctx, tx, bookingID, from, fields)
	}
	return true, nil
}

func (m *mockBookingRepo) Transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if m.transactFn != nil {
		return m.transactFn(ctx, fn)
	}
	return fn(nil)
}

// --- Mock SessionRepository ---

type mockSessionRepo struct {
	createFn          func(ctx context.Context, s *models.SessionInstance) error
	findByIDFn        func(ctx context.Context, id string) (*models.SessionInstance, error)
	findForUpdateFn   func(ctx context.Context, tx *gorm.DB, id string) (*models.SessionInstance, error)
	findOverlappingFn func(ctx context.Context, locationID string, start, end time.Time, excludeID string) (*models.SessionInstance, error)
	listFn            func(ctx context.Context, filter repository.SessionFilter) ([]models.SessionInstance, int64, error)
	listPublicFn      func(ctx context.Context, filter repository.SessionFilter) ([]models.SessionInstance, int64, error)
	updateFieldsFn    func(ctx context.Context, id string, fields map[string]any) error
	updateStatusFn    func(ctx context.Context, id string, status models.SessionStatus) error
}

func (m *mockSessionRepo) Create(ctx context.Context, s *models.SessionInstance) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	if s.ID == "" {
		s.ID = testSessionID
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*models.SessionInstance, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.SessionInstance, error) {
	if m.findForUpdateFn != nil {
		return m.findForUpdateFn(ctx, tx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) FindOverlapping(ctx context.Context, locationID string, start, end time.Time, excludeID string) (*models.SessionInstance, error) {
	if m.findOverlappingFn != nil {
		return m.findOverlappingFn(ctx, locationID, start, end, excludeID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) List(ctx context.Context, filter repository.SessionFilter) ([]models.SessionInstance, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockSessionRepo) ListPublic(ctx context.Context, filter repository.SessionFilter) ([]models.SessionInstance, int64, error) {
	if m.listPublicFn != nil {
		return m.listPublicFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockSessionRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if m.updateFieldsFn != nil {
		return m.updateFieldsFn(ctx, id, fields)
	}
	return nil
}

func (m *mockSessionRepo) UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

// --- Mock WaitlistRepository ---

type mockWaitlistRepo struct {
	createFn         func(ctx context.Context, tx *gorm.DB, e *models.WaitlistEntry) error
	findByMemberFn   func(ctx context.Context, tx *gorm.DB, memberID, sessionID string) (*models.WaitlistEntry, error)
	countFn          func(ctx context.Context, tx *gorm.DB, sessionID string) (int64, error)
	listFn           func(ctx context.Context, tx *gorm.DB, sessionID string) ([]models.WaitlistEntry, error)
	firstFn          func(ctx context.Context, tx *gorm.DB, sessionID string) (*models.WaitlistEntry, error)
	deleteFn         func(ctx context.Context, tx *gorm.DB, id string) error
	updatePositionFn func(ctx context.Context, tx *gorm.DB, id string, position int) error
}

func (m *mockWaitlistRepo) Create(ctx context.Context, tx *gorm.DB, e *models.WaitlistEntry) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, e)
	}
	if e.ID == "" {
		e.ID = "waitlist-1"
	}
	return nil
}

func (m *mockWaitlistRepo) FindByMemberAndSession(ctx context.Context, tx *gorm.DB, memberID, sessionID string) (*models.WaitlistEntry, error) {
	if m.findByMemberFn != nil {
		return m.findByMemberFn(ctx, tx, memberID, sessionID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWaitlistRepo) CountBySession(ctx context.Context, tx *gorm.DB, sessionID string) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, tx, sessionID)
	}
	return 0, nil
}

func (m *mockWaitlistRepo) ListBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]models.WaitlistEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, tx, sessionID)
	}
	return nil, nil
}

func (m *mockWaitlistRepo) First(ctx context.Context, tx *gorm.DB, sessionID string) (*models.WaitlistEntry, error) {
	if m.firstFn != nil {
		return m.firstFn(ctx, tx, sessionID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWaitlistRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, id)
	}
	return nil
}

func (m *mockWaitlistRepo) UpdatePosition(ctx context.Context, tx *gorm.DB, id string, position int) error {
	if m.updatePositionFn != nil {
		return m.updatePositionFn(ctx, tx, id, position)
	}
	return nil
}

// --- Mock MovementService ---

type mockMovements struct {
	recorded []*models.MovementEvent
	emitted  []*models.MovementEvent
	listFn   func(ctx context.Context, memberID string, limit int) ([]models.MovementEvent, error)
}

func (m *mockMovements) Record(ctx context.Context, tx *gorm.DB, event *models.MovementEvent) error {
	m.recorded = append(m.recorded, event)
	return nil
}

func (m *mockMovements) Emit(event *models.MovementEvent) {
	m.emitted = append(m.emitted, event)
}

func (m *mockMovements) ListByMember(ctx context.Context, memberID string, limit int) ([]models.MovementEvent, error) {
	if m.listFn != nil {
		return m.listFn(ctx, memberID, limit)
	}
	return nil, nil
}

// --- Mock WaitlistService ---

type mockWaitlistSvc struct {
	joinFn        func(ctx context.Context, sessionID, memberID string) (*models.WaitlistEntry, error)
	leaveFn       func(ctx context.Context, sessionID, memberID string) error
	listFn        func(ctx context.Context, sessionID string) ([]models.WaitlistEntry, error)
	promoteNextFn func(ctx context.Context, tx *gorm.DB, session *models.SessionInstance) (*models.Booking, []*models.MovementEvent, error)
}

func (m *mockWaitlistSvc) Join(ctx context.Context, sessionID, memberID string) (*models.WaitlistEntry, error) {
	return m.joinFn(ctx, sessionID, memberID)
}

func (m *mockWaitlistSvc) Leave(ctx context.Context, sessionID, memberID string) error {
	return m.leaveFn(ctx, sessionID, memberID)
}

func (m *mockWaitlistSvc) ListBySession(ctx context.Context, sessionID string) ([]models.WaitlistEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockWaitlistSvc) PromoteNext(ctx context.Context, tx *gorm.DB, session *models.SessionInstance) (*models.Booking, []*models.MovementEvent, error) {
	if m.promoteNextFn != nil {
		return m.promoteNextFn(ctx, tx, session)
	}
	return nil, nil, nil
}

// --- Mock catalog repositories ---

type mockSessionTypeRepo struct {
	createFn     func(ctx context.Context, st *models.SessionType) error
	findByIDFn   func(ctx context.Context, id string) (*models.SessionType, error)
	findByNameFn func(ctx context.Context, name, excludeID string) (*models.SessionType, error)
	listActiveFn func(ctx context.Context) ([]models.SessionType, error)
	saveFn       func(ctx context.Context, st *models.SessionType) error
}

func (m *mockSessionTypeRepo) Create(ctx context.Context, st *models.SessionType) error {
	if m.createFn != nil {
		return m.createFn(ctx, st)
	}
	if st.ID == "" {
		st.ID = "type-1"
	}
	return nil
}

func (m *mockSessionTypeRepo) FindByID(ctx context.Context, id string) (*models.SessionType, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionTypeRepo) FindByName(ctx context.Context, name, excludeID string) (*models.SessionType, error) {
	if m.findByNameFn != nil {
		return m.findByNameFn(ctx, name, excludeID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionTypeRepo) ListActive(ctx context.Context) ([]models.SessionType, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
}

func (m *mockSessionTypeRepo) Save(ctx context.Context, st *models.SessionType) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, st)
	}
	return nil
}

type mockLocationRepo struct {
	createFn     func(ctx context.Context, l *models.Location) error
	findByIDFn   func(ctx context.Context, id string) (*models.Location, error)
	findByNameFn func(ctx context.Context, name, excludeID string) (*models.Location, error)
	listActiveFn func(ctx context.Context) ([]models.Location, error)
	listPublicFn func(ctx context.Context) ([]models.Location, error)
	saveFn       func(ctx context.Context, l *models.Location) error
}

func (m *mockLocationRepo) Create(ctx context.Context, l *models.Location) error {
	if m.createFn != nil {
		return m.createFn(ctx, l)
	}
	if l.ID == "" {
		l.ID = "location-1"
	}
	return nil
}

func (m *mockLocationRepo) FindByID(ctx context.Context, id string) (*models.Location, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLocationRepo) FindByName(ctx context.Context, name, excludeID string) (*models.Location, error) {
	if m.findByNameFn != nil {
		return m.findByNameFn(ctx, name, excludeID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLocationRepo) ListActive(ctx context.Context) ([]models.Location, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
}

func (m *mockLocationRepo) ListActivePublic(ctx context.Context) ([]models.Location, error) {
	if m.listPublicFn != nil {
		return m.listPublicFn(ctx)
	}
	return nil, nil
}

func (m *mockLocationRepo) Save(ctx context.Context, l *models.Location) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, l)
	}
	return nil
}
