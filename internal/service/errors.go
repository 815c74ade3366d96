package service

import "errors"

// Not-found family. An entity that exists under another tenant reports the
// same error as one that does not exist at all.
var (
	ErrSessionTypeNotFound = errors.New("session type not found")
	ErrLocationNotFound    = errors.New("location not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrBookingNotFound     = errors.New("no booking found")
	ErrNotOnWaitlist       = errors.New("not on the waitlist for this session")
)

// Conflict family: capacity and uniqueness violations.
var (
	ErrDuplicateName      = errors.New("name is already in use")
	ErrSchedulingConflict = errors.New("location is already booked during this time slot")
	ErrAlreadyBooked      = errors.New("already booked this session")
	ErrSessionFull        = errors.New("session is full")
	ErrAlreadyWaitlisted  = errors.New("already on the waitlist for this session")
)

// Invalid-state family: the operation is not valid for the current status or
// time window.
var (
	ErrInvalidTimeRange    = errors.New("end time must be after start time")
	ErrSessionNotBookable  = errors.New("session is not open for booking")
	ErrSessionStarted      = errors.New("session has already started")
	ErrSessionNotStarted   = errors.New("session has not started yet")
	ErrCheckInExpired      = errors.New("check-in window has expired")
	ErrCancelWindowClosed  = errors.New("cannot cancel this close to the session start")
	ErrBookingNotConfirmed = errors.New("booking is not in a confirmed state")
	ErrSessionCompleted    = errors.New("session is already completed")
	ErrSessionNotScheduled = errors.New("only scheduled sessions are eligible")
	ErrBookingNotAllowed   = errors.New("member is not allowed to book")
)
