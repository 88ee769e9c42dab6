package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	ErrProviderNotFound = errors.New("provider not found")

	ErrSlotTaken = errors.New("requested slot conflicts with an existing appointment")

	ErrCalendarNotConnected = errors.New("provider has no active external calendar connection")
)
