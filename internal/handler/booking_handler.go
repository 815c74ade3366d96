package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/moveos/scheduling-service/internal/dto"
	"github.com/moveos/scheduling-service/internal/models"
	"github.com/moveos/scheduling-service/internal/service"
)

type BookingHandler struct {
	bookings  service.BookingService
	waitlists service.WaitlistService
	movements service.MovementService
}

func NewBookingHandler(bookings service.BookingService, waitlists service.WaitlistService, movements service.MovementService) *BookingHandler {
	return &BookingHandler{bookings: bookings, waitlists: waitlists, movements: movements}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	sessions := e.Group("/api/v1/sessions")
	sessions.POST("/:id/bookings", h.CreateBooking)
	sessions.POST("/:id/checkin", h.CheckIn)
	sessions.POST("/:id/waitlist", h.JoinWaitlist)
	sessions.DELETE("/:id/waitlist", h.LeaveWaitlist)
	sessions.GET("/:id/roster", h.Roster)

	e.GET("/api/v1/bookings", h.ListMyBookings)
	e.DELETE("/api/v1/bookings/:id", h.CancelBooking)
	e.POST("/api/v1/bookings/:id/no-show", h.MarkNoShow)

	e.GET("/api/v1/members/me/activity", h.ListMyActivity)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	actor, err := memberFrom(c)
	if err != nil {
		return err
	}

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	booking, err := h.bookings.CreateBooking(c.Request().Context(), c.Param("id"), actor.MemberID, req.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	actor, err := memberFrom(c)
	if err != nil {
		return err
	}

	booking, err := h.bookings.CancelBooking(c.Request().Context(), c.Param("id"), actor.MemberID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) CheckIn(c echo.Context) error {
	actor, err := memberFrom(c)
	if err != nil {
		return err
	}

	booking, err := h.bookings.CheckIn(c.Request().Context(), c.Param("id"), actor.MemberID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) MarkNoShow(c echo.Context) error {
	booking, err := h.bookings.MarkNoShow(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	actor, err := memberFrom(c)
	if err != nil {
		return err
	}

	var status *models.BookingStatus
	if raw := c.QueryParam("status"); raw != "" {
		s := models.BookingStatus(raw)
		switch s {
		case models.StatusConfirmed, models.StatusCancelled,
			models.StatusAttended, models.StatusNoShow:
			status = &s
		default:
			return echo.NewHTTPError(http.StatusBadRequest, "invalid booking status")
		}
	}

	bookings, err := h.bookings.ListMemberBookings(c.Request().Context(), actor.MemberID, status)
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, dto.ToBookingResponse(&bookings[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) JoinWaitlist(c echo.Context) error {
	actor, err := memberFrom(c)
	if err != nil {
		return err
	}

	entry, err := h.waitlists.Join(c.Request().Context(), c.Param("id"), actor.MemberID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToWaitlistEntryResponse(entry))
}

func (h *BookingHandler) LeaveWaitlist(c echo.Context) error {
	actor, err := memberFrom(c)
	if err != nil {
		return err
	}

	if err := h.waitlists.Leave(c.Request().Context(), c.Param("id"), actor.MemberID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BookingHandler) Roster(c echo.Context) error {
	roster, err := h.bookings.Roster(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	resp := dto.RosterResponse{
		Session:  dto.ToSessionResponse(roster.Session),
		Bookings: make([]dto.BookingResponse, 0, len(roster.Bookings)),
		Waitlist: make([]dto.WaitlistEntryResponse, 0, len(roster.Waitlist)),
	}
	for i := range roster.Bookings {
		resp.Bookings = append(resp.Bookings, dto.ToBookingResponse(&roster.Bookings[i]))
	}
	for i := range roster.Waitlist {
		resp.Waitlist = append(resp.Waitlist, dto.ToWaitlistEntryResponse(&roster.Waitlist[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) ListMyActivity(c echo.Context) error {
	actor, err := memberFrom(c)
	if err != nil {
		return err
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 200")
		}
		limit = n
	}

	events, err := h.movements.ListByMember(c.Request().Context(), actor.MemberID, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, events)
}
