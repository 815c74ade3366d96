package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/moveos/scheduling-service/internal/service"
	"github.com/moveos/scheduling-service/internal/tenant"
)

// httpError maps service failures onto transport status codes. Messages never
// reveal whether an entity exists under another tenant.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionTypeNotFound),
		errors.Is(err, service.ErrLocationNotFound),
		errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrNotOnWaitlist):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrSchedulingConflict),
		errors.Is(err, service.ErrAlreadyBooked),
		errors.Is(err, service.ErrSessionFull),
		errors.Is(err, service.ErrAlreadyWaitlisted):
		return echo.NewHTTPError(http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrSessionNotBookable),
		errors.Is(err, service.ErrSessionStarted),
		errors.Is(err, service.ErrSessionNotStarted),
		errors.Is(err, service.ErrCheckInExpired),
		errors.Is(err, service.ErrCancelWindowClosed),
		errors.Is(err, service.ErrBookingNotConfirmed),
		errors.Is(err, service.ErrSessionCompleted),
		errors.Is(err, service.ErrSessionNotScheduled):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrBookingNotAllowed):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())

	case errors.Is(err, tenant.ErrMissingTenant):
		// Integration fault: a scoped call reached storage without a tenant.
		return echo.NewHTTPError(http.StatusInternalServerError, "tenant context not established")

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// memberFrom pulls the identity resolved by the upstream auth layer.
func memberFrom(c echo.Context) (tenant.Actor, error) {
	actor, ok := tenant.ActorFrom(c.Request().Context())
	if !ok {
		return tenant.Actor{}, echo.NewHTTPError(http.StatusBadRequest, "missing X-Member-ID header")
	}
	return actor, nil
}
