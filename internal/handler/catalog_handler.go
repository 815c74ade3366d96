package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/moveos/scheduling-service/internal/dto"
	"github.com/moveos/scheduling-service/internal/models"
	"github.com/moveos/scheduling-service/internal/service"
)

type CatalogHandler struct {
	svc service.CatalogService
}

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo) {
	types := e.Group("/api/v1/session-types")
	types.POST("", h.CreateSessionType)
	types.GET("", h.ListSessionTypes)
	types.PATCH("/:id", h.UpdateSessionType)
	types.DELETE("/:id", h.DeactivateSessionType)

	locations := e.Group("/api/v1/locations")
	locations.POST("", h.CreateLocation)
	locations.GET("", h.ListLocations)
	locations.PATCH("/:id", h.UpdateLocation)
	locations.DELETE("/:id", h.DeactivateLocation)

	e.GET("/api/v1/public/locations", h.ListLocationsPublic)
}

func (h *CatalogHandler) CreateSessionType(c echo.Context) error {
	var req dto.CreateSessionTypeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.DurationMinutes <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "duration_minutes must be positive")
	}

	st := &models.SessionType{
		Name:            req.Name,
		Category:        req.Category,
		DurationMinutes: req.DurationMinutes,
		MaxCapacity:     req.MaxCapacity,
		Difficulty:      req.Difficulty,
		Active:          true,
	}
	if err := h.svc.CreateSessionType(c.Request().Context(), st); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *CatalogHandler) ListSessionTypes(c echo.Context) error {
	types, err := h.svc.ListSessionTypes(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, types)
}

func (h *CatalogHandler) UpdateSessionType(c echo.Context) error {
	var req dto.UpdateSessionTypeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "duration_minutes must be positive")
	}

	st, err := h.svc.UpdateSessionType(c.Request().Context(), c.Param("id"), service.UpdateSessionTypeInput{
		Name:            req.Name,
		Category:        req.Category,
		DurationMinutes: req.DurationMinutes,
		MaxCapacity:     req.MaxCapacity,
		Difficulty:      req.Difficulty,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *CatalogHandler) DeactivateSessionType(c echo.Context) error {
	if err := h.svc.DeactivateSessionType(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) CreateLocation(c echo.Context) error {
	var req dto.CreateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.Capacity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "capacity cannot be negative")
	}

	l := &models.Location{
		Name:     req.Name,
		Address:  req.Address,
		Capacity: req.Capacity,
		Timezone: req.Timezone,
		Active:   true,
	}
	if err := h.svc.CreateLocation(c.Request().Context(), l); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *CatalogHandler) ListLocations(c echo.Context) error {
	locations, err := h.svc.ListLocations(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, locations)
}

func (h *CatalogHandler) UpdateLocation(c echo.Context) error {
	var req dto.UpdateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	l, err := h.svc.UpdateLocation(c.Request().Context(), c.Param("id"), service.UpdateLocationInput{
		Name:     req.Name,
		Address:  req.Address,
		Capacity: req.Capacity,
		Timezone: req.Timezone,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *CatalogHandler) DeactivateLocation(c echo.Context) error {
	if err := h.svc.DeactivateLocation(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) ListLocationsPublic(c echo.Context) error {
	locations, err := h.svc.ListLocationsPublic(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, locations)
}
