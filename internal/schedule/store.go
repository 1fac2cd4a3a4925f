package schedule

import (
	"sync"

	"github.com/google/uuid"
)

// IDFunc mints a unique id carrying the given prefix.
type IDFunc func(prefix string) string

// NewID is the default IDFunc: prefix + "_" + random uuid.
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

const (
	chamberIDPrefix = "ch"
	slotIDPrefix    = "ts"
)

// Store owns the weekly schedule. All reads return copies.
type Store struct {
	mu       sync.RWMutex
	schedule Schedule
	newID    IDFunc
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc overrides id minting, mainly for deterministic tests.
func WithIDFunc(fn IDFunc) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewStore creates a store seeded with initial.
func NewStore(initial Schedule, opts ...Option) *Store {
	s := &Store{
		schedule: initial.Clone(),
		newID:    NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the whole schedule.
func (s *Store) Snapshot() Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule.Clone()
}

// Chambers returns a copy of the chambers held on day.
func (s *Store) Chambers(day Day) []Chamber {
	if !day.Valid() {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Chamber, len(s.schedule[day]))
	for i, ch := range s.schedule[day] {
		out[i] = ch.Clone()
	}
	return out
}

// UpsertChamber replaces the chamber of day whose id matches input.ID, keeping
// its position, or appends a new chamber when no such chamber exists on day.
// Slots are rebuilt from input.Slots by positional alignment with the chamber
// being replaced.
func (s *Store) UpsertChamber(day Day, input ChamberInput) (Chamber, error) {
	if !day.Valid() {
		return Chamber{}, ErrInvalidDay
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	chambers := s.schedule[day]
	idx := indexOfChamber(chambers, input.ID)

	var previous []TimeSlot
	id := input.ID
	if idx >= 0 {
		previous = chambers[idx].Slots
	} else {
		id = s.newID(chamberIDPrefix)
	}

	chamber := Chamber{
		ID:    id,
		Place: input.Place,
		Slots: buildSlots(ParseSlotLabels(input.Slots), previous, func() string {
			return s.newID(slotIDPrefix)
		}),
	}

	updated := make([]Chamber, len(chambers), len(chambers)+1)
	copy(updated, chambers)
	if idx >= 0 {
		updated[idx] = chamber
	} else {
		updated = append(updated, chamber)
	}
	s.schedule[day] = updated

	return chamber.Clone(), nil
}

// DeleteChamber removes the chamber from day. It reports whether a chamber was
// removed; a missing chamber is not an error.
func (s *Store) DeleteChamber(day Day, chamberID string) bool {
	if !day.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	chambers := s.schedule[day]
	kept := make([]Chamber, 0, len(chambers))
	for _, ch := range chambers {
		if ch.ID == chamberID {
			continue
		}
		kept = append(kept, ch)
	}
	removed := len(kept) != len(chambers)
	s.schedule[day] = kept
	return removed
}

// MarkSlotBooked flips the slot to booked. Unknown day, chamber or slot is a
// silent no-op; the return value only reports whether a slot matched.
func (s *Store) MarkSlotBooked(day Day, chamberID, slotID string) bool {
	if !day.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	chambers := s.schedule[day]
	idx := indexOfChamber(chambers, chamberID)
	if idx < 0 {
		return false
	}
	for i := range chambers[idx].Slots {
		if chambers[idx].Slots[i].ID != slotID {
			continue
		}
		chambers[idx].Slots[i].IsBooked = true
		return true
	}
	return false
}

// FindSlot looks up a slot and its chamber.
func (s *Store) FindSlot(day Day, chamberID, slotID string) (Chamber, TimeSlot, bool) {
	if !day.Valid() {
		return Chamber{}, TimeSlot{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	chambers := s.schedule[day]
	idx := indexOfChamber(chambers, chamberID)
	if idx < 0 {
		return Chamber{}, TimeSlot{}, false
	}
	for _, slot := range chambers[idx].Slots {
		if slot.ID == slotID {
			return chambers[idx].Clone(), slot, true
		}
	}
	return Chamber{}, TimeSlot{}, false
}

func indexOfChamber(chambers []Chamber, id string) int {
	if id == "" {
		return -1
	}
	for i, ch := range chambers {
		if ch.ID == id {
			return i
		}
	}
	return -1
}
