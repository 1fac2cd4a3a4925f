package scheduling

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/chamber-scheduler/internal/appointments"
	"github.com/wolfman30/chamber-scheduler/internal/observability/metrics"
	"github.com/wolfman30/chamber-scheduler/internal/persistence"
	"github.com/wolfman30/chamber-scheduler/internal/schedule"
	"github.com/wolfman30/chamber-scheduler/pkg/logging"
)

var schedulingTracer = otel.Tracer("chamber.internal.scheduling")

// DeleteChamberPrompt is the question put to the confirm gate before a delete.
const DeleteChamberPrompt = "Are you sure you want to delete this chamber and all its slots?"

// ConfirmFunc is the yes/no gate asked before destructive operations.
type ConfirmFunc func(prompt string) bool

// Persister writes whole documents. *persistence.Adapter satisfies it.
type Persister interface {
	SaveSchedule(ctx context.Context, s schedule.Schedule) error
	SaveAppointments(ctx context.Context, list []appointments.Appointment) error
}

// Confirmer produces the confirmation text. *confirmation.Provider satisfies it.
type Confirmer interface {
	Message(ctx context.Context, patientName string, day schedule.Day, slotTime, place string) string
}

// Selection is a slot chosen for booking, with the labels shown at selection time.
type Selection struct {
	Day       schedule.Day `json:"day"`
	ChamberID string       `json:"chamberId"`
	SlotID    string       `json:"slotId"`
	Time      string       `json:"time"`
	Place     string       `json:"place"`
}

// BookingResult is the outcome of a booking.
type BookingResult struct {
	Appointment appointments.Appointment `json:"appointment"`
	Message     string                   `json:"message"`
}

// Service coordinates the schedule and appointment stores, persistence and
// confirmation text.
type Service struct {
	// mu serializes mutation+write pairs so documents are written in mutation order.
	mu           sync.Mutex
	schedule     *schedule.Store
	appointments *appointments.Store
	persister    Persister
	confirmer    Confirmer
	metrics      *metrics.SchedulingMetrics
	logger       *logging.Logger
}

// NewService constructs a scheduling service. Metrics may be nil.
func NewService(
	scheduleStore *schedule.Store,
	appointmentStore *appointments.Store,
	persister Persister,
	confirmer Confirmer,
	m *metrics.SchedulingMetrics,
	logger *logging.Logger,
) *Service {
	if scheduleStore == nil || appointmentStore == nil {
		panic("scheduling: stores required")
	}
	if persister == nil {
		panic("scheduling: persister required")
	}
	if confirmer == nil {
		panic("scheduling: confirmer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		schedule:     scheduleStore,
		appointments: appointmentStore,
		persister:    persister,
		confirmer:    confirmer,
		metrics:      m,
		logger:       logger,
	}
}

// Schedule returns a snapshot of the whole schedule.
func (s *Service) Schedule() schedule.Schedule {
	return s.schedule.Snapshot()
}

// Chambers returns the chambers held on day.
func (s *Service) Chambers(day schedule.Day) []schedule.Chamber {
	return s.schedule.Chambers(day)
}

// Appointments returns every appointment, newest first.
func (s *Service) Appointments() []appointments.Appointment {
	return s.appointments.List()
}

// UpsertChamber creates or edits a chamber and writes the schedule. When the
// write fails the edit is kept in memory and the error is returned.
func (s *Service) UpsertChamber(ctx context.Context, day schedule.Day, input schedule.ChamberInput) (schedule.Chamber, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.upsert_chamber")
	defer span.End()
	span.SetAttributes(
		attribute.String("chamber.day", day.String()),
		attribute.String("chamber.input_id", input.ID),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	chamber, err := s.schedule.UpsertChamber(day, input)
	if err != nil {
		s.metrics.ObserveChamberOp("upsert", "invalid")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return schedule.Chamber{}, err
	}
	span.SetAttributes(attribute.String("chamber.id", chamber.ID))

	if err := s.saveSchedule(ctx); err != nil {
		s.metrics.ObserveChamberOp("upsert", "unsaved")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return chamber, err
	}

	s.metrics.ObserveChamberOp("upsert", "ok")
	s.logger.Info("chamber saved",
		"day", day.String(),
		"chamber_id", chamber.ID,
		"slots", len(chamber.Slots),
	)
	return chamber, nil
}

// DeleteChamber asks confirm first; when declined nothing changes and false
// is returned. Otherwise the chamber is removed from day, every appointment
// booked against it is dropped, and both documents are written. A missing
// chamber is not an error.
func (s *Service) DeleteChamber(ctx context.Context, day schedule.Day, chamberID string, confirm ConfirmFunc) (bool, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.delete_chamber")
	defer span.End()
	span.SetAttributes(
		attribute.String("chamber.day", day.String()),
		attribute.String("chamber.id", chamberID),
	)

	if confirm == nil || !confirm(DeleteChamberPrompt) {
		s.metrics.ObserveChamberOp("delete", "declined")
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.schedule.DeleteChamber(day, chamberID)
	cancelled := s.appointments.DeleteByChamber(chamberID)
	span.SetAttributes(
		attribute.Bool("chamber.removed", removed),
		attribute.Int("appointments.removed", cancelled),
	)

	err := errors.Join(s.saveSchedule(ctx), s.saveAppointments(ctx))
	if err != nil {
		s.metrics.ObserveChamberOp("delete", "unsaved")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return true, err
	}

	s.metrics.ObserveChamberOp("delete", "ok")
	s.logger.Info("chamber deleted",
		"day", day.String(),
		"chamber_id", chamberID,
		"found", removed,
		"appointments_removed", cancelled,
	)
	return true, nil
}

// SelectSlot resolves a slot for booking. The check is not atomic with Book:
// two callers can select the same open slot and both book it.
func (s *Service) SelectSlot(day schedule.Day, chamberID, slotID string) (Selection, error) {
	chamber, slot, ok := s.schedule.FindSlot(day, chamberID, slotID)
	if !ok {
		return Selection{}, ErrSlotNotFound
	}
	if slot.IsBooked {
		return Selection{}, ErrSlotBooked
	}
	return Selection{
		Day:       day,
		ChamberID: chamber.ID,
		SlotID:    slot.ID,
		Time:      slot.Time,
		Place:     chamber.Place,
	}, nil
}

// Book records the appointment and marks the slot booked together, writes
// both documents, then asks for the confirmation text. The confirmation is
// requested after the lock is released so a slow generator never delays other
// mutations. A persistence failure is returned alongside the result; the
// booking itself stands.
func (s *Service) Book(ctx context.Context, sel Selection, patient appointments.Patient) (BookingResult, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("booking.day", sel.Day.String()),
		attribute.String("booking.chamber_id", sel.ChamberID),
		attribute.String("booking.slot_id", sel.SlotID),
	)

	appt, saveErr := s.commitBooking(ctx, sel, patient)
	span.SetAttributes(attribute.String("booking.appointment_id", appt.ID))
	if saveErr != nil {
		s.metrics.ObserveBooking("unsaved")
		span.RecordError(saveErr)
		span.SetStatus(codes.Error, saveErr.Error())
	} else {
		s.metrics.ObserveBooking("ok")
	}

	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"day", sel.Day.String(),
		"chamber_id", sel.ChamberID,
		"slot_id", sel.SlotID,
	)

	message := s.confirmer.Message(ctx, patient.Name, sel.Day, sel.Time, sel.Place)
	return BookingResult{Appointment: appt, Message: message}, saveErr
}

func (s *Service) commitBooking(ctx context.Context, sel Selection, patient appointments.Patient) (appointments.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt := s.appointments.Add(patient, appointments.SlotLocation{
		Day:       sel.Day,
		ChamberID: sel.ChamberID,
		SlotID:    sel.SlotID,
		Time:      sel.Time,
		Place:     sel.Place,
	})
	if !s.schedule.MarkSlotBooked(sel.Day, sel.ChamberID, sel.SlotID) {
		s.logger.Warn("booked slot no longer in schedule",
			"day", sel.Day.String(),
			"chamber_id", sel.ChamberID,
			"slot_id", sel.SlotID,
		)
	}

	return appt, errors.Join(s.saveAppointments(ctx), s.saveSchedule(ctx))
}

// SaveAll rewrites both documents from the current state.
func (s *Service) SaveAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.saveSchedule(ctx), s.saveAppointments(ctx))
}

func (s *Service) saveSchedule(ctx context.Context) error {
	err := s.persister.SaveSchedule(ctx, s.schedule.Snapshot())
	s.metrics.ObservePersistenceWrite(persistence.ScheduleKey, err)
	if err != nil {
		s.logger.Error("failed to persist schedule", "error", err)
	}
	return err
}

func (s *Service) saveAppointments(ctx context.Context) error {
	err := s.persister.SaveAppointments(ctx, s.appointments.List())
	s.metrics.ObservePersistenceWrite(persistence.AppointmentsKey, err)
	if err != nil {
		s.logger.Error("failed to persist appointments", "error", err)
	}
	return err
}
