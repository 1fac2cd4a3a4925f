package appointments

import (
	"sync"

	"github.com/wolfman30/chamber-scheduler/internal/schedule"
)

const appointmentIDPrefix = "apt"

// Store owns the appointment list, newest first.
type Store struct {
	mu    sync.RWMutex
	items []Appointment
	newID schedule.IDFunc
}

// NewStore creates a store holding a copy of initial, which must already be
// newest first. A nil idFunc uses schedule.NewID.
func NewStore(initial []Appointment, idFunc schedule.IDFunc) *Store {
	if idFunc == nil {
		idFunc = schedule.NewID
	}
	items := make([]Appointment, len(initial))
	copy(items, initial)
	return &Store{items: items, newID: idFunc}
}

// Add mints an id and prepends the appointment. No validation happens here.
func (s *Store) Add(patient Patient, loc SlotLocation) Appointment {
	appt := Appointment{
		ID:           s.newID(appointmentIDPrefix),
		Patient:      patient,
		SlotLocation: loc,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Appointment, 0, len(s.items)+1)
	items = append(items, appt)
	s.items = append(items, s.items...)
	return appt
}

// DeleteByChamber drops every appointment booked against chamberID and
// returns how many were removed.
func (s *Store) DeleteByChamber(chamberID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]Appointment, 0, len(s.items))
	for _, appt := range s.items {
		if appt.ChamberID == chamberID {
			continue
		}
		kept = append(kept, appt)
	}
	removed := len(s.items) - len(kept)
	s.items = kept
	return removed
}

// List returns a copy of all appointments, newest first.
func (s *Store) List() []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Appointment, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports how many appointments are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
