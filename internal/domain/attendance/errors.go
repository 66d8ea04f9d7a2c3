package attendance

import "errors"

var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn = errors.New("you already have an open session")
	ErrNotCheckedIn     = errors.New("you have not checked in yet")

	// General errors
	ErrRecordNotFound        = errors.New("attendance record not found")
	ErrExceptionNotFound     = errors.New("attendance exception not found")
	ErrCheckOutBeforeCheckIn = errors.New("check-out time must be after check-in time")
)
