package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wolfman30/chamber-scheduler/internal/appointments"
	"github.com/wolfman30/chamber-scheduler/internal/schedule"
	"github.com/wolfman30/chamber-scheduler/pkg/logging"
)

// Adapter reads both documents at startup and rewrites them wholesale after
// every mutation.
type Adapter struct {
	backend Backend
	logger  *logging.Logger
}

// NewAdapter wraps a backend.
func NewAdapter(backend Backend, logger *logging.Logger) *Adapter {
	if backend == nil {
		panic("persistence: backend required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Adapter{backend: backend, logger: logger}
}

// LoadSchedule returns the stored schedule, or the seed schedule when nothing
// has been stored yet.
func (a *Adapter) LoadSchedule(ctx context.Context) (schedule.Schedule, error) {
	body, err := a.backend.Get(ctx, ScheduleKey)
	if errors.Is(err, ErrNotFound) {
		a.logger.Info("no stored schedule, using seed data", "key", ScheduleKey)
		return schedule.Seed(), nil
	}
	if err != nil {
		return schedule.Schedule{}, fmt.Errorf("persistence: load schedule: %w", err)
	}
	var s schedule.Schedule
	if err := json.Unmarshal(body, &s); err != nil {
		return schedule.Schedule{}, fmt.Errorf("persistence: decode schedule: %w", err)
	}
	return s, nil
}

// LoadAppointments returns the stored appointment list, or the seed list when
// nothing has been stored yet.
func (a *Adapter) LoadAppointments(ctx context.Context) ([]appointments.Appointment, error) {
	body, err := a.backend.Get(ctx, AppointmentsKey)
	if errors.Is(err, ErrNotFound) {
		a.logger.Info("no stored appointments, using seed data", "key", AppointmentsKey)
		return appointments.Seed(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("persistence: load appointments: %w", err)
	}
	var list []appointments.Appointment
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("persistence: decode appointments: %w", err)
	}
	if list == nil {
		list = []appointments.Appointment{}
	}
	return list, nil
}

// SaveSchedule overwrites the stored schedule.
func (a *Adapter) SaveSchedule(ctx context.Context, s schedule.Schedule) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("persistence: encode schedule: %w", err)
	}
	if err := a.backend.Put(ctx, ScheduleKey, body); err != nil {
		return fmt.Errorf("persistence: save schedule: %w", err)
	}
	return nil
}

// SaveAppointments overwrites the stored appointment list.
func (a *Adapter) SaveAppointments(ctx context.Context, list []appointments.Appointment) error {
	if list == nil {
		list = []appointments.Appointment{}
	}
	body, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("persistence: encode appointments: %w", err)
	}
	if err := a.backend.Put(ctx, AppointmentsKey, body); err != nil {
		return fmt.Errorf("persistence: save appointments: %w", err)
	}
	return nil
}
