package schedule

import "strings"

// ParseSlotLabels splits a comma-separated label list, trimming whitespace
// and dropping empty entries. Duplicates are kept.
func ParseSlotLabels(raw string) []string {
	parts := strings.Split(raw, ",")
	labels := make([]string, 0, len(parts))
	for _, part := range parts {
		label := strings.TrimSpace(part)
		if label == "" {
			continue
		}
		labels = append(labels, label)
	}
	return labels
}

// JoinSlotLabels renders slots back into the comma form an edit starts from.
func JoinSlotLabels(slots []TimeSlot) string {
	labels := make([]string, len(slots))
	for i, slot := range slots {
		labels[i] = slot.Time
	}
	return strings.Join(labels, ", ")
}

// buildSlots aligns new labels with the previous slot list by position: the
// slot at index i keeps the previous id and booked flag at index i, whatever
// its label. Reordering labels therefore moves booking state to a different
// time.
func buildSlots(labels []string, previous []TimeSlot, newID func() string) []TimeSlot {
	slots := make([]TimeSlot, len(labels))
	for i, label := range labels {
		slot := TimeSlot{Time: label}
		if i < len(previous) {
			slot.ID = previous[i].ID
			slot.IsBooked = previous[i].IsBooked
		}
		if slot.ID == "" {
			slot.ID = newID()
		}
		slots[i] = slot
	}
	return slots
}
