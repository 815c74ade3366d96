package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/moveos/scheduling-service/internal/dto"
	"github.com/moveos/scheduling-service/internal/models"
	"github.com/moveos/scheduling-service/internal/repository"
	"github.com/moveos/scheduling-service/internal/service"
	"github.com/stretchr/testify/assert"
)

// --- Mock SessionService ---

type mockSessionService struct {
	scheduleFn      func(ctx context.Context, in service.ScheduleSessionInput) (*models.SessionInstance, error)
	updateFn        func(ctx context.Context, id string, in service.UpdateSessionInput) (*models.SessionInstance, error)
	cancelFn        func(ctx context.Context, id string) (*models.SessionInstance, error)
	completeFn      func(ctx context.Context, id string) (*models.SessionInstance, error)
	getFn           func(ctx context.Context, id string) (*models.SessionInstance, error)
	listFn          func(ctx context.Context, filter repository.SessionFilter) ([]models.SessionInstance, int64, error)
	listAvailableFn func(ctx context.Context, filter repository.SessionFilter) ([]service.AvailableSession, error)
}

func (m *mockSessionService) Schedule(ctx context.Context, in service.ScheduleSessionInput) (*models.SessionInstance, error) {
	return m.scheduleFn(ctx, in)
}
func (m *mockSessionService) Update(ctx context.Context, id string, in service.UpdateSessionInput) (*models.SessionInstance, error) {
	return m.updateFn(ctx, id, in)
}
func (m *mockSessionService) Cancel(ctx context.Context, id string) (*models.SessionInstance, error) {
	return m.cancelFn(ctx, id)
}
func (m *mockSessionService) Complete(ctx context.Context, id string) (*models.SessionInstance, error) {
	return m.completeFn(ctx, id)
}
func (m *mockSessionService) Get(ctx context.Context, id string) (*models.SessionInstance, error) {
	return m.getFn(ctx, id)
}
func (m *mockSessionService) List(ctx context.Context, filter repository.SessionFilter) ([]models.SessionInstance, int64, error) {
	return m.listFn(ctx, filter)
}
func (m *mockSessionService) ListAvailable(ctx context.Context, filter repository.SessionFilter) ([]service.AvailableSession, error) {
	return m.listAvailableFn(ctx, filter)
}

func TestScheduleSession_MissingRequiredFields(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"location_id":"loc-1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Schedule(c)

	he, ok := err.(*echo.HTTPError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusBadRequest, he.Code)
	}
}

func TestScheduleSession_ConflictMapsTo409(t *testing.T) {
	svc := &mockSessionService{
		scheduleFn: func(ctx context.Context, in service.ScheduleSessionInput) (*models.SessionInstance, error) {
			return nil, service.ErrSchedulingConflict
		},
	}
	h := NewSessionHandler(svc)

	body := `{"session_type_id":"type-1","location_id":"loc-1","start_time":"2026-09-01T10:00:00Z"}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Schedule(c)

	he, ok := err.(*echo.HTTPError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusConflict, he.Code)
	}
}

func TestScheduleSession_CapacityNullVersusAbsent(t *testing.T) {
	var got service.ScheduleSessionInput
	svc := &mockSessionService{
		scheduleFn: func(ctx context.Context, in service.ScheduleSessionInput) (*models.SessionInstance, error) {
			got = in
			return &models.SessionInstance{ID: "session-1"}, nil
		},
	}
	h := NewSessionHandler(svc)
	e := echo.New()

	schedule := func(body string) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		assert.NoError(t, h.Schedule(e.NewContext(req, rec)))
	}

	schedule(`{"session_type_id":"type-1","location_id":"loc-1","start_time":"2026-09-01T10:00:00Z"}`)
	assert.False(t, got.CapacitySet)

	schedule(`{"session_type_id":"type-1","location_id":"loc-1","start_time":"2026-09-01T10:00:00Z","capacity":null}`)
	assert.True(t, got.CapacitySet)
	assert.Nil(t, got.Capacity)

	schedule(`{"session_type_id":"type-1","location_id":"loc-1","start_time":"2026-09-01T10:00:00Z","capacity":12}`)
	assert.True(t, got.CapacitySet)
	if assert.NotNil(t, got.Capacity) {
		assert.Equal(t, 12, *got.Capacity)
	}
}

func TestListSessions_ParsesFilter(t *testing.T) {
	var got repository.SessionFilter
	svc := &mockSessionService{
		listFn: func(ctx context.Context, filter repository.SessionFilter) ([]models.SessionInstance, int64, error) {
			got = filter
			return nil, 0, nil
		},
	}
	h := NewSessionHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?date=2026-09-01&category=yoga&page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.List(c)

	assert.NoError(t, err)
	assert.Equal(t, "yoga", got.Category)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 10, got.Limit)
	if assert.NotNil(t, got.Date) {
		assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), *got.Date)
	}
}

func TestListSessions_BadDate(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?date=01-09-2026", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.List(c)

	he, ok := err.(*echo.HTTPError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusBadRequest, he.Code)
	}
}

func TestListSessions_LimitCapped(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.List(c)

	he, ok := err.(*echo.HTTPError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusBadRequest, he.Code)
	}
}

func TestListSessions_Pagination(t *testing.T) {
	svc := &mockSessionService{
		listFn: func(ctx context.Context, filter repository.SessionFilter) ([]models.SessionInstance, int64, error) {
			return []models.SessionInstance{{ID: "session-1"}}, 45, nil
		},
	}
	h := NewSessionHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?page=2&limit=20", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.List(c)

	assert.NoError(t, err)
	var resp dto.SessionListResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(45), resp.Pagination.Total)
	assert.True(t, resp.Pagination.HasNext)
}

func TestGetSession_NotFound(t *testing.T) {
	svc := &mockSessionService{
		getFn: func(ctx context.Context, id string) (*models.SessionInstance, error) {
			return nil, service.ErrSessionNotFound
		},
	}
	h := NewSessionHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/sessions/:id")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := h.Get(c)

	he, ok := err.(*echo.HTTPError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusNotFound, he.Code)
	}
}

func TestListAvailable_ReturnsSpots(t *testing.T) {
	spots := 4
	svc := &mockSessionService{
		listAvailableFn: func(ctx context.Context, filter repository.SessionFilter) ([]service.AvailableSession, error) {
			return []service.AvailableSession{
				{SessionInstance: models.SessionInstance{ID: "session-1"}, SpotsAvailable: &spots},
			}, nil
		},
	}
	h := NewSessionHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.ListAvailable(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"spots_available":4`)
}
