package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/moveos/scheduling-service/internal/models"
	"github.com/moveos/scheduling-service/internal/repository"
	"github.com/moveos/scheduling-service/internal/tenant"
	"gorm.io/gorm"
)

// TenantHandler covers provisioning and bootstrap lookups. These routes run
// outside the tenant guard: a tenant cannot name itself before it exists.
type TenantHandler struct {
	repo repository.TenantRepository
}

func NewTenantHandler(repo repository.TenantRepository) *TenantHandler {
	return &TenantHandler{repo: repo}
}

func (h *TenantHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/tenants", h.CreateTenant)
	e.GET("/api/v1/tenants/me", h.CurrentTenant)
	e.GET("/api/v1/public/tenants/:code", h.LookupByCode)
}

type createTenantRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (h *TenantHandler) CreateTenant(c echo.Context) error {
	var req createTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and code are required")
	}

	if existing, err := h.repo.FindByCode(c.Request().Context(), req.Code); err == nil && existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "tenant code already in use")
	}

	t := &models.Tenant{Name: req.Name, Code: req.Code}
	if err := h.repo.Create(c.Request().Context(), t); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *TenantHandler) CurrentTenant(c echo.Context) error {
	id, err := tenant.ID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing X-Tenant-ID header")
	}

	t, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "tenant not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

// LookupByCode resolves a public tenant code to its id so clients can
// bootstrap the X-Tenant-ID header.
func (h *TenantHandler) LookupByCode(c echo.Context) error {
	t, err := h.repo.FindByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "tenant not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"id": t.ID, "name": t.Name, "code": t.Code})
}
