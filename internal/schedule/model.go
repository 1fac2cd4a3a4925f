package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TimeSlot is a single bookable entry inside a chamber. Time is a display
// label and is never parsed.
type TimeSlot struct {
	ID       string `json:"id"`
	Time     string `json:"time"`
	IsBooked bool   `json:"isBooked"`
}

// Chamber is a place the doctor sits on a given day, with its ordered slots.
type Chamber struct {
	ID    string     `json:"id"`
	Place string     `json:"place"`
	Slots []TimeSlot `json:"slots"`
}

// ChamberInput is the payload of an add/edit chamber form. Slots is the raw
// comma-separated label list as typed by the doctor.
type ChamberInput struct {
	ID    string `json:"id,omitempty"`
	Place string `json:"place"`
	Slots string `json:"slots"`
}

// Schedule maps every day to its ordered chambers. Insertion order is
// display order.
type Schedule [DaysInWeek][]Chamber

// Clone returns a deep copy so callers never alias store state.
func (c Chamber) Clone() Chamber {
	out := c
	out.Slots = make([]TimeSlot, len(c.Slots))
	copy(out.Slots, c.Slots)
	return out
}

// Clone returns a deep copy of the whole schedule.
func (s Schedule) Clone() Schedule {
	var out Schedule
	for i, chambers := range s {
		out[i] = make([]Chamber, len(chambers))
		for j, ch := range chambers {
			out[i][j] = ch.Clone()
		}
	}
	return out
}

// MarshalJSON writes all seven days in week order, empty days as [].
func (s Schedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, day := range AllDays() {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(day.String())
		buf.Write(name)
		buf.WriteByte(':')

		chambers := make([]Chamber, len(s[day]))
		for j, ch := range s[day] {
			chambers[j] = ch
			if ch.Slots == nil {
				chambers[j].Slots = []TimeSlot{}
			}
		}
		body, err := json.Marshal(chambers)
		if err != nil {
			return nil, fmt.Errorf("schedule: marshal %s: %w", day, err)
		}
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the day-keyed object form. Missing days decode as
// empty; unknown keys are rejected.
func (s *Schedule) UnmarshalJSON(data []byte) error {
	var raw map[string][]Chamber
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("schedule: unmarshal: %w", err)
	}
	var out Schedule
	for key, chambers := range raw {
		day, err := ParseDay(key)
		if err != nil {
			return err
		}
		if chambers == nil {
			chambers = []Chamber{}
		}
		for j := range chambers {
			if chambers[j].Slots == nil {
				chambers[j].Slots = []TimeSlot{}
			}
		}
		out[day] = chambers
	}
	for i := range out {
		if out[i] == nil {
			out[i] = []Chamber{}
		}
	}
	*s = out
	return nil
}

// Empty returns a schedule with every day present and no chambers.
func Empty() Schedule {
	var s Schedule
	for i := range s {
		s[i] = []Chamber{}
	}
	return s
}
