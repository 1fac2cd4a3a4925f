package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/chamber-scheduler/internal/appointments"
	"github.com/wolfman30/chamber-scheduler/internal/confirmation"
	"github.com/wolfman30/chamber-scheduler/internal/observability/metrics"
	"github.com/wolfman30/chamber-scheduler/internal/persistence"
	"github.com/wolfman30/chamber-scheduler/internal/schedule"
	"github.com/wolfman30/chamber-scheduler/pkg/logging"
)

type fixture struct {
	service  *Service
	backend  *persistence.MemoryBackend
	adapter  *persistence.Adapter
	schedule *schedule.Store
	appts    *appointments.Store
}

func sequentialIDs() schedule.IDFunc {
	var mu sync.Mutex
	n := 0
	return func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s_gen_%d", prefix, n)
	}
}

func newFixture(t *testing.T, persister Persister, confirmer Confirmer) fixture {
	t.Helper()
	ids := sequentialIDs()
	backend := persistence.NewMemoryBackend()
	adapter := persistence.NewAdapter(backend, logging.Default())
	if persister == nil {
		persister = adapter
	}
	if confirmer == nil {
		confirmer = confirmation.NewProvider(nil, logging.Default())
	}
	scheduleStore := schedule.NewStore(schedule.Seed(), schedule.WithIDFunc(ids))
	apptStore := appointments.NewStore(appointments.Seed(), ids)
	m := metrics.NewSchedulingMetrics(prometheus.NewRegistry())
	return fixture{
		service:  NewService(scheduleStore, apptStore, persister, confirmer, m, logging.Default()),
		backend:  backend,
		adapter:  adapter,
		schedule: scheduleStore,
		appts:    apptStore,
	}
}

func acceptAll(string) bool { return true }

var jane = appointments.Patient{Name: "Jane", Age: "30", Gender: appointments.GenderFemale, Address: "2 Elm", Mobile: "555-0000"}

func TestBookFirstOpenMondaySlotFromSeed(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	wednesdayBefore := f.service.Chambers(schedule.Wednesday)
	existing := f.service.Appointments()[0]

	sel, err := f.service.SelectSlot(schedule.Monday, "ch_mon_1", "ts_mon_1_1")
	require.NoError(t, err)
	assert.Equal(t, "10:00 AM", sel.Time)
	assert.Equal(t, "Greenwood Clinic, 123 Health St.", sel.Place)

	result, err := f.service.Book(ctx, sel, jane)
	require.NoError(t, err)

	list := f.service.Appointments()
	require.Len(t, list, 2)
	assert.Equal(t, result.Appointment, list[0])
	assert.Equal(t, "ts_mon_1_1", list[0].SlotID)
	assert.Equal(t, jane, list[0].Patient)
	assert.Equal(t, existing, list[1])

	_, slot, ok := f.schedule.FindSlot(schedule.Monday, "ch_mon_1", "ts_mon_1_1")
	require.True(t, ok)
	assert.True(t, slot.IsBooked)
	assert.Equal(t, wednesdayBefore, f.service.Chambers(schedule.Wednesday))

	assert.Equal(t,
		"Dear Jane, your appointment at Greenwood Clinic, 123 Health St. on Monday at 10:00 AM is confirmed. Please arrive 10 minutes early.",
		result.Message)

	// Both documents were rewritten.
	storedSchedule, err := f.adapter.LoadSchedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.service.Schedule(), storedSchedule)
	storedAppts, err := f.adapter.LoadAppointments(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, storedAppts)
}

func TestBookProducesExactlyOneAppointmentPerSlot(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	sel, err := f.service.SelectSlot(schedule.Wednesday, "ch_wed_1", "ts_wed_1_2")
	require.NoError(t, err)
	_, err = f.service.Book(ctx, sel, jane)
	require.NoError(t, err)

	count := 0
	for _, appt := range f.service.Appointments() {
		if appt.SlotID == "ts_wed_1_2" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	_, err = f.service.SelectSlot(schedule.Wednesday, "ch_wed_1", "ts_wed_1_2")
	assert.ErrorIs(t, err, ErrSlotBooked)
}

func TestSelectSlotErrors(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.service.SelectSlot(schedule.Monday, "ch_mon_1", "ts_mon_1_2")
	assert.ErrorIs(t, err, ErrSlotBooked)

	_, err = f.service.SelectSlot(schedule.Tuesday, "ch_mon_1", "ts_mon_1_1")
	assert.ErrorIs(t, err, ErrSlotNotFound)

	_, err = f.service.SelectSlot(schedule.Monday, "ch_mon_1", "nope")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestStaleSelectionsBothBook(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	first, err := f.service.SelectSlot(schedule.Monday, "ch_mon_1", "ts_mon_1_3")
	require.NoError(t, err)
	second, err := f.service.SelectSlot(schedule.Monday, "ch_mon_1", "ts_mon_1_3")
	require.NoError(t, err)

	_, err = f.service.Book(ctx, first, jane)
	require.NoError(t, err)
	_, err = f.service.Book(ctx, second, appointments.Patient{Name: "Sam", Age: "40", Gender: appointments.GenderMale, Mobile: "1"})
	require.NoError(t, err)

	// No check-and-set on the booked flag: both selections become appointments.
	assert.Len(t, f.service.Appointments(), 3)
}

func TestDeleteChamberCascadesOnlyMatchingAppointments(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	sel, err := f.service.SelectSlot(schedule.Wednesday, "ch_wed_1", "ts_wed_1_1")
	require.NoError(t, err)
	_, err = f.service.Book(ctx, sel, jane)
	require.NoError(t, err)
	require.Len(t, f.service.Appointments(), 2)

	var asked string
	accepted, err := f.service.DeleteChamber(ctx, schedule.Monday, "ch_mon_1", func(prompt string) bool {
		asked = prompt
		return true
	})
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, DeleteChamberPrompt, asked)

	assert.Empty(t, f.service.Chambers(schedule.Monday))
	list := f.service.Appointments()
	require.Len(t, list, 1)
	assert.Equal(t, "ch_wed_1", list[0].ChamberID)

	stored, err := f.adapter.LoadAppointments(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, stored)
}

func TestDeleteChamberDeclinedChangesNothing(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	accepted, err := f.service.DeleteChamber(ctx, schedule.Monday, "ch_mon_1", func(string) bool { return false })
	require.NoError(t, err)
	assert.False(t, accepted)

	accepted, err = f.service.DeleteChamber(ctx, schedule.Monday, "ch_mon_1", nil)
	require.NoError(t, err)
	assert.False(t, accepted)

	assert.Equal(t, schedule.Seed(), f.service.Schedule())
	assert.Len(t, f.service.Appointments(), 1)
	_, err = f.backend.Get(ctx, persistence.ScheduleKey)
	assert.ErrorIs(t, err, persistence.ErrNotFound, "declined delete must not write")
}

func TestDeleteMissingChamberIsSilent(t *testing.T) {
	f := newFixture(t, nil, nil)

	accepted, err := f.service.DeleteChamber(context.Background(), schedule.Friday, "missing", acceptAll)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, schedule.Seed(), f.service.Schedule())
	assert.Len(t, f.service.Appointments(), 1)
}

func TestUpsertChamberPersistsSchedule(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	ch, err := f.service.UpsertChamber(ctx, schedule.Sunday, schedule.ChamberInput{Place: "Sunday Clinic", Slots: "9:00, 9:30"})
	require.NoError(t, err)
	assert.Equal(t, "ch_gen_1", ch.ID)

	stored, err := f.adapter.LoadSchedule(ctx)
	require.NoError(t, err)
	require.Len(t, stored[schedule.Sunday], 1)
	assert.Equal(t, ch, stored[schedule.Sunday][0])

	_, err = f.service.UpsertChamber(ctx, schedule.Day(10), schedule.ChamberInput{})
	assert.ErrorIs(t, err, schedule.ErrInvalidDay)
}

func TestReorderedEditDoesNotFollowLabels(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	ch, err := f.service.UpsertChamber(ctx, schedule.Tuesday, schedule.ChamberInput{Place: "Clinic", Slots: "9:00, 9:30"})
	require.NoError(t, err)
	sel, err := f.service.SelectSlot(schedule.Tuesday, ch.ID, ch.Slots[0].ID)
	require.NoError(t, err)
	require.Equal(t, "9:00", sel.Time)
	_, err = f.service.Book(ctx, sel, jane)
	require.NoError(t, err)

	edited, err := f.service.UpsertChamber(ctx, schedule.Tuesday, schedule.ChamberInput{ID: ch.ID, Place: "Clinic", Slots: "9:30, 9:00"})
	require.NoError(t, err)

	byLabel := map[string]schedule.TimeSlot{}
	for _, slot := range edited.Slots {
		byLabel[slot.Time] = slot
	}
	assert.False(t, byLabel["9:00"].IsBooked, "booking does not follow the 9:00 label")
	assert.True(t, byLabel["9:30"].IsBooked, "booking stays at its index")
	// The appointment still points at the slot id now labelled 9:30.
	assert.Equal(t, byLabel["9:30"].ID, f.service.Appointments()[0].SlotID)
}

type failingPersister struct {
	err   error
	calls int
}

func (p *failingPersister) SaveSchedule(context.Context, schedule.Schedule) error {
	p.calls++
	return p.err
}

func (p *failingPersister) SaveAppointments(context.Context, []appointments.Appointment) error {
	p.calls++
	return p.err
}

func TestPersistenceFailureKeepsInMemoryState(t *testing.T) {
	boom := errors.New("disk full")
	persister := &failingPersister{err: boom}
	f := newFixture(t, persister, nil)
	ctx := context.Background()

	sel, err := f.service.SelectSlot(schedule.Monday, "ch_mon_1", "ts_mon_1_1")
	require.NoError(t, err)
	result, err := f.service.Book(ctx, sel, jane)
	assert.ErrorIs(t, err, boom)
	assert.NotEmpty(t, result.Message)
	assert.Len(t, f.service.Appointments(), 2)

	_, err = f.service.UpsertChamber(ctx, schedule.Friday, schedule.ChamberInput{Place: "x", Slots: "1"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, f.service.Chambers(schedule.Friday), 1)

	assert.ErrorIs(t, f.service.SaveAll(ctx), boom)
	assert.Equal(t, 5, persister.calls)
}

func TestSaveAllWritesBothDocuments(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.service.SaveAll(ctx))

	_, err := f.backend.Get(ctx, persistence.ScheduleKey)
	assert.NoError(t, err)
	_, err = f.backend.Get(ctx, persistence.AppointmentsKey)
	assert.NoError(t, err)
}

type blockingConfirmer struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingConfirmer) Message(_ context.Context, name string, day schedule.Day, slotTime, place string) string {
	close(b.started)
	<-b.release
	return "generated for " + name
}

func TestSlowConfirmationDoesNotBlockOtherMutations(t *testing.T) {
	confirmer := &blockingConfirmer{started: make(chan struct{}), release: make(chan struct{})}
	f := newFixture(t, nil, confirmer)
	ctx := context.Background()

	sel, err := f.service.SelectSlot(schedule.Monday, "ch_mon_1", "ts_mon_1_1")
	require.NoError(t, err)

	done := make(chan BookingResult)
	go func() {
		result, _ := f.service.Book(ctx, sel, jane)
		done <- result
	}()

	<-confirmer.started
	// The booking is visible and the store accepts further mutations while
	// the confirmation is still pending.
	_, slot, _ := f.schedule.FindSlot(schedule.Monday, "ch_mon_1", "ts_mon_1_1")
	assert.True(t, slot.IsBooked)
	_, err = f.service.UpsertChamber(ctx, schedule.Friday, schedule.ChamberInput{Place: "x", Slots: "1"})
	require.NoError(t, err)

	close(confirmer.release)
	result := <-done
	assert.Equal(t, "generated for Jane", result.Message)
}
