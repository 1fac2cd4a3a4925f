package scheduling

import "errors"

var (
	// ErrSlotNotFound is returned when the selected day/chamber/slot does not exist.
	ErrSlotNotFound = errors.New("scheduling: slot not found")

	// ErrSlotBooked is returned when the selected slot is already booked.
	ErrSlotBooked = errors.New("scheduling: slot already booked")
)
