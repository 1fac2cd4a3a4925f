package appointments

import "github.com/wolfman30/chamber-scheduler/internal/schedule"

// Seed returns the demo appointment list matching schedule.Seed.
func Seed() []Appointment {
	return []Appointment{{
		ID: "apt_1",
		Patient: Patient{
			Name:    "John Doe",
			Age:     "45",
			Gender:  GenderMale,
			Address: "1 Main St",
			Mobile:  "555-1234",
		},
		SlotLocation: SlotLocation{
			Day:       schedule.Monday,
			ChamberID: "ch_mon_1",
			SlotID:    "ts_mon_1_2",
			Time:      "10:30 AM",
			Place:     "Greenwood Clinic, 123 Health St.",
		},
	}}
}
