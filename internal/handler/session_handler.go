package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/moveos/scheduling-service/internal/dto"
	"github.com/moveos/scheduling-service/internal/models"
	"github.com/moveos/scheduling-service/internal/repository"
	"github.com/moveos/scheduling-service/internal/service"
)

type SessionHandler struct {
	svc service.SessionService
}

func NewSessionHandler(svc service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) RegisterRoutes(e *echo.Echo) {
	sessions := e.Group("/api/v1/sessions")
	sessions.POST("", h.Schedule)
	sessions.GET("", h.List)
	sessions.GET("/:id", h.Get)
	sessions.PATCH("/:id", h.Update)
	sessions.DELETE("/:id", h.Cancel)
	sessions.POST("/:id/complete", h.Complete)

	e.GET("/api/v1/public/sessions", h.ListAvailable)
}

func (h *SessionHandler) Schedule(c echo.Context) error {
	var req dto.ScheduleSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SessionTypeID == "" || req.LocationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_type_id and location_id are required")
	}
	if req.StartTime.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "start_time is required")
	}

	session, err := h.svc.Schedule(c.Request().Context(), service.ScheduleSessionInput{
		SessionTypeID: req.SessionTypeID,
		LocationID:    req.LocationID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Capacity:      req.Capacity.Value,
		CapacitySet:   req.Capacity.Set,
		Instructor:    req.Instructor,
		Notes:         req.Notes,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToSessionResponse(session))
}

func (h *SessionHandler) List(c echo.Context) error {
	filter, err := sessionFilterFrom(c)
	if err != nil {
		return err
	}

	sessions, total, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}

	resp := dto.SessionListResponse{
		Data: make([]dto.SessionResponse, 0, len(sessions)),
		Pagination: dto.Pagination{
			Page:    filter.Page,
			Limit:   filter.Limit,
			Total:   total,
			HasNext: int64(filter.Page*filter.Limit) < total,
		},
	}
	for i := range sessions {
		resp.Data = append(resp.Data, dto.ToSessionResponse(&sessions[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) Get(c echo.Context) error {
	session, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

func (h *SessionHandler) Update(c echo.Context) error {
	var req dto.UpdateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	session, err := h.svc.Update(c.Request().Context(), c.Param("id"), service.UpdateSessionInput{
		SessionTypeID: req.SessionTypeID,
		LocationID:    req.LocationID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Capacity:      req.Capacity.Value,
		CapacitySet:   req.Capacity.Set,
		Instructor:    req.Instructor,
		Notes:         req.Notes,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

func (h *SessionHandler) Cancel(c echo.Context) error {
	session, err := h.svc.Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

func (h *SessionHandler) Complete(c echo.Context) error {
	session, err := h.svc.Complete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

func (h *SessionHandler) ListAvailable(c echo.Context) error {
	filter, err := sessionFilterFrom(c)
	if err != nil {
		return err
	}

	sessions, err := h.svc.ListAvailable(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sessions)
}

func sessionFilterFrom(c echo.Context) (repository.SessionFilter, error) {
	filter := repository.SessionFilter{
		Category:   c.QueryParam("category"),
		LocationID: c.QueryParam("location_id"),
		Status:     models.SessionStatus(c.QueryParam("status")),
		Page:       1,
		Limit:      20,
	}

	if raw := c.QueryParam("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		filter.Date = &date
	}
	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid page")
		}
		filter.Page = page
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
		}
		filter.Limit = limit
	}
	return filter, nil
}
