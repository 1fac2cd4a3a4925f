package persistence

import (
	"context"
	"errors"
)

// Document keys. They match the keys the dashboard has always used so that
// exported state stays interchangeable.
const (
	ScheduleKey     = "doctorSchedule"
	AppointmentsKey = "doctorAppointments"
)

// ErrNotFound is returned by a Backend when a key has never been written.
var ErrNotFound = errors.New("persistence: document not found")

// Backend stores whole JSON documents by key. Put always overwrites.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte) error
}
