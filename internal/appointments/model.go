package appointments

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/chamber-scheduler/internal/schedule"
)

// Gender is the closed set offered on the intake form.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

var (
	// ErrMissingRequiredFields is returned when name, age or mobile is blank.
	ErrMissingRequiredFields = errors.New("name, age and mobile are required")

	// ErrInvalidGender is returned for a gender outside Male/Female/Other.
	ErrInvalidGender = errors.New("gender must be Male, Female or Other")
)

// Patient is the intake form payload, embedded by copy in each appointment.
type Patient struct {
	Name    string `json:"name"`
	Age     string `json:"age"`
	Gender  Gender `json:"gender"`
	Address string `json:"address"`
	Mobile  string `json:"mobile"`
}

// Normalize defaults an empty gender to Male, matching the form's preselection.
func (p Patient) Normalize() Patient {
	if strings.TrimSpace(string(p.Gender)) == "" {
		p.Gender = GenderMale
	}
	return p
}

// Validate applies the intake form rules. Stores never call it.
func (p Patient) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Age) == "" || strings.TrimSpace(p.Mobile) == "" {
		return ErrMissingRequiredFields
	}
	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidGender, p.Gender)
	}
}

// SlotLocation identifies the slot an appointment was booked against, with
// the labels copied at booking time.
type SlotLocation struct {
	Day       schedule.Day `json:"day"`
	ChamberID string       `json:"chamberId"`
	SlotID    string       `json:"slotId"`
	Time      string       `json:"time"`
	Place     string       `json:"place"`
}

// Appointment is a confirmed booking. ChamberID and SlotID are not kept in
// sync with later chamber edits. SlotLocation fields encode flat, after
// patient.
type Appointment struct {
	ID      string  `json:"id"`
	Patient Patient `json:"patient"`
	SlotLocation
}
