package schedule

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() IDFunc {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s_test_%d", prefix, n)
	}
}

func TestUpsertChamberAppendsNewChamber(t *testing.T) {
	store := NewStore(Seed(), WithIDFunc(sequentialIDs()))

	ch, err := store.UpsertChamber(Monday, ChamberInput{Place: "City Hospital", Slots: "09:00 AM, 09:30 AM"})
	require.NoError(t, err)

	assert.Equal(t, "ch_test_1", ch.ID)
	assert.Equal(t, []TimeSlot{
		{ID: "ts_test_2", Time: "09:00 AM"},
		{ID: "ts_test_3", Time: "09:30 AM"},
	}, ch.Slots)

	monday := store.Chambers(Monday)
	require.Len(t, monday, 2)
	assert.Equal(t, "ch_mon_1", monday[0].ID)
	assert.Equal(t, "ch_test_1", monday[1].ID)
}

func TestUpsertChamberReplacesInPlace(t *testing.T) {
	s := Empty()
	s[Tuesday] = []Chamber{
		{ID: "first", Place: "A", Slots: []TimeSlot{{ID: "x", Time: "1"}}},
		{ID: "second", Place: "B", Slots: []TimeSlot{{ID: "y", Time: "2", IsBooked: true}}},
		{ID: "third", Place: "C", Slots: []TimeSlot{}},
	}
	store := NewStore(s, WithIDFunc(sequentialIDs()))

	ch, err := store.UpsertChamber(Tuesday, ChamberInput{ID: "second", Place: "B2", Slots: "2, 3"})
	require.NoError(t, err)

	assert.Equal(t, "second", ch.ID)
	assert.Equal(t, "B2", ch.Place)
	assert.Equal(t, []TimeSlot{
		{ID: "y", Time: "2", IsBooked: true},
		{ID: "ts_test_1", Time: "3"},
	}, ch.Slots)

	tuesday := store.Chambers(Tuesday)
	require.Len(t, tuesday, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{tuesday[0].ID, tuesday[1].ID, tuesday[2].ID})
}

func TestUpsertChamberUnchangedEditIsIdempotent(t *testing.T) {
	store := NewStore(Seed(), WithIDFunc(sequentialIDs()))
	before := store.Chambers(Monday)[0]

	after, err := store.UpsertChamber(Monday, ChamberInput{
		ID:    before.ID,
		Place: before.Place,
		Slots: JoinSlotLabels(before.Slots),
	})
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Equal(t, Seed(), store.Snapshot())
}

func TestUpsertChamberReorderMovesBookingStateByPosition(t *testing.T) {
	s := Empty()
	s[Thursday] = []Chamber{{
		ID:    "ch",
		Place: "Clinic",
		Slots: []TimeSlot{
			{ID: "s900", Time: "9:00", IsBooked: true},
			{ID: "s930", Time: "9:30"},
		},
	}}
	store := NewStore(s, WithIDFunc(sequentialIDs()))

	ch, err := store.UpsertChamber(Thursday, ChamberInput{ID: "ch", Place: "Clinic", Slots: "9:30, 9:00"})
	require.NoError(t, err)

	// The booked flag stays at index 0, now labelled 9:30; the 9:00 booking is lost.
	assert.Equal(t, TimeSlot{ID: "s900", Time: "9:30", IsBooked: true}, ch.Slots[0])
	assert.Equal(t, TimeSlot{ID: "s930", Time: "9:00", IsBooked: false}, ch.Slots[1])
}

func TestUpsertChamberShrinkingDropsTrailingSlots(t *testing.T) {
	store := NewStore(Seed(), WithIDFunc(sequentialIDs()))

	ch, err := store.UpsertChamber(Monday, ChamberInput{ID: "ch_mon_1", Place: "Greenwood", Slots: "10:00 AM"})
	require.NoError(t, err)

	assert.Equal(t, []TimeSlot{{ID: "ts_mon_1_1", Time: "10:00 AM"}}, ch.Slots)
}

func TestUpsertChamberUnknownIDMintsFreshID(t *testing.T) {
	store := NewStore(Seed(), WithIDFunc(sequentialIDs()))

	// ch_mon_1 lives on Monday; using it on Friday must not duplicate the id.
	ch, err := store.UpsertChamber(Friday, ChamberInput{ID: "ch_mon_1", Place: "Elsewhere", Slots: "1 PM"})
	require.NoError(t, err)

	assert.Equal(t, "ch_test_1", ch.ID)
	assert.Len(t, store.Chambers(Monday), 1)
	assert.Len(t, store.Chambers(Friday), 1)
}

func TestUpsertChamberInvalidDay(t *testing.T) {
	store := NewStore(Empty())
	_, err := store.UpsertChamber(Day(7), ChamberInput{Place: "x"})
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestDeleteChamber(t *testing.T) {
	store := NewStore(Seed())

	assert.True(t, store.DeleteChamber(Monday, "ch_mon_1"))
	assert.Empty(t, store.Chambers(Monday))
	assert.Len(t, store.Chambers(Wednesday), 1)

	assert.False(t, store.DeleteChamber(Monday, "ch_mon_1"))
	assert.False(t, store.DeleteChamber(Tuesday, "ch_wed_1"))
	assert.False(t, store.DeleteChamber(Day(-1), "ch_wed_1"))
	assert.Len(t, store.Chambers(Wednesday), 1)
}

func TestMarkSlotBooked(t *testing.T) {
	store := NewStore(Seed())

	assert.True(t, store.MarkSlotBooked(Monday, "ch_mon_1", "ts_mon_1_1"))
	_, slot, ok := store.FindSlot(Monday, "ch_mon_1", "ts_mon_1_1")
	require.True(t, ok)
	assert.True(t, slot.IsBooked)

	// Booking twice keeps it booked; nothing can unbook it.
	assert.True(t, store.MarkSlotBooked(Monday, "ch_mon_1", "ts_mon_1_1"))
	_, slot, _ = store.FindSlot(Monday, "ch_mon_1", "ts_mon_1_1")
	assert.True(t, slot.IsBooked)
}

func TestMarkSlotBookedUnknownTargetsAreNoOps(t *testing.T) {
	store := NewStore(Seed())

	assert.False(t, store.MarkSlotBooked(Tuesday, "ch_mon_1", "ts_mon_1_1"))
	assert.False(t, store.MarkSlotBooked(Monday, "missing", "ts_mon_1_1"))
	assert.False(t, store.MarkSlotBooked(Monday, "ch_mon_1", "missing"))
	assert.False(t, store.MarkSlotBooked(Day(8), "ch_mon_1", "ts_mon_1_1"))
	assert.Equal(t, Seed(), store.Snapshot())
}

func TestSnapshotDoesNotAliasStore(t *testing.T) {
	store := NewStore(Seed())
	snap := store.Snapshot()
	snap[Monday][0].Slots[0].IsBooked = true
	snap[Monday] = nil

	_, slot, ok := store.FindSlot(Monday, "ch_mon_1", "ts_mon_1_1")
	require.True(t, ok)
	assert.False(t, slot.IsBooked)
}

func TestNewIDIsPrefixedAndUnique(t *testing.T) {
	a, b := NewID("ch"), NewID("ch")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^ch_[0-9a-f-]{36}$`, a)
}
