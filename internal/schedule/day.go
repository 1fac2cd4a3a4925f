package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Day is one of the seven days a chamber can be held on.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysInWeek is the size of the closed day set.
const DaysInWeek = 7

// ErrInvalidDay is returned when a day name is not one of the seven known days.
var ErrInvalidDay = errors.New("schedule: invalid day")

var dayNames = [DaysInWeek]string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// AllDays lists every day in week order.
func AllDays() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// Valid reports whether d is inside the closed set.
func (d Day) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// ParseDay resolves an English day name, case-insensitively.
func ParseDay(raw string) (Day, error) {
	name := strings.TrimSpace(raw)
	for i, candidate := range dayNames {
		if strings.EqualFold(candidate, name) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, raw)
}

func (d Day) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDay, int(d))
	}
	return json.Marshal(dayNames[d])
}

func (d *Day) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("schedule: day must be a string: %w", err)
	}
	parsed, err := ParseDay(name)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
