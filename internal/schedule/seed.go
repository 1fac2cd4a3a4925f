package schedule

// Seed returns the demo schedule used when nothing has been persisted yet.
func Seed() Schedule {
	s := Empty()
	s[Monday] = append(s[Monday], Chamber{
		ID:    "ch_mon_1",
		Place: "Greenwood Clinic, 123 Health St.",
		Slots: []TimeSlot{
			{ID: "ts_mon_1_1", Time: "10:00 AM"},
			{ID: "ts_mon_1_2", Time: "10:30 AM", IsBooked: true},
			{ID: "ts_mon_1_3", Time: "11:00 AM"},
		},
	})
	s[Wednesday] = append(s[Wednesday], Chamber{
		ID:    "ch_wed_1",
		Place: "Downtown Medical Center, 456 Wellness Ave.",
		Slots: []TimeSlot{
			{ID: "ts_wed_1_1", Time: "02:00 PM"},
			{ID: "ts_wed_1_2", Time: "02:30 PM"},
		},
	})
	return s
}
