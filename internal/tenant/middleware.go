package tenant

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderMemberID = "X-Member-ID"
	HeaderRole     = "X-Role"
)

// Skipper marks requests that are allowed through without a tenant. Only the
// explicitly public browse routes should ever match.
type Skipper func(c echo.Context) bool

// Lookup confirms a tenant id refers to a real tenant. Deliberately
// tenant-agnostic; implemented by the tenant repository.
type Lookup interface {
	Exists(ctx context.Context, tenantID string) (bool, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, tenantID string) (bool, error)

func (f LookupFunc) Exists(ctx context.Context, tenantID string) (bool, error) {
	return f(ctx, tenantID)
}

// Middleware resolves the X-Tenant-ID header, validates it, and installs the
// tenant id and resolved identity on the request context. Requests without a
// tenant are rejected unless the skipper matches.
func Middleware(lookup Lookup, skip Skipper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenantID := c.Request().Header.Get(HeaderTenantID)

			if tenantID == "" {
				if skip != nil && skip(c) {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusBadRequest, "missing X-Tenant-ID header")
			}

			if _, err := uuid.Parse(tenantID); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid X-Tenant-ID format")
			}

			if lookup != nil {
				ok, err := lookup.Exists(c.Request().Context(), tenantID)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "tenant lookup failed")
				}
				if !ok {
					return echo.NewHTTPError(http.StatusBadRequest, "unknown tenant")
				}
			}

			ctx := WithTenant(c.Request().Context(), tenantID)
			if memberID := c.Request().Header.Get(HeaderMemberID); memberID != "" {
				ctx = WithActor(ctx, Actor{
					MemberID: memberID,
					Role:     c.Request().Header.Get(HeaderRole),
				})
			}
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// PublicBrowsing matches the deliberately tenant-agnostic discovery routes:
// read-only catalog browsing without a tenant header.
func PublicBrowsing(paths ...string) Skipper {
	return func(c echo.Context) bool {
		if c.Request().Method != http.MethodGet {
			return false
		}
		reqPath := c.Request().URL.Path
		for _, p := range paths {
			if reqPath == p || (len(reqPath) > len(p) && reqPath[:len(p)+1] == p+"/") {
				return true
			}
		}
		return false
	}
}
