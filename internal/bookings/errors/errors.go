package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	// ErrSlotTaken means a slot claim or an overlapping appointment already
	// holds part of the requested time.
	ErrSlotTaken = errors.New("slot is already taken")

	ErrInvalidTransition = errors.New("appointment status does not allow this transition")
)
