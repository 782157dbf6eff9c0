package domain

import "github.com/m04kA/SMC-AppointmentService/pkg/types"

// TimeRange полуоткрытый интервал [Start, End) в пределах одних суток
type TimeRange struct {
	Start types.TimeString
	End   types.TimeString
}

// IsValid returns true if both bounds are well-formed and End is strictly after Start
func (r TimeRange) IsValid() bool {
	if r.Start.Validate() != nil || r.End.Validate() != nil {
		return false
	}
	return r.Start.IsBefore(r.End)
}

// Overlaps проверяет пересечение двух полуоткрытых интервалов: s1 < e2 && s2 < e1
// Интервалы, которые только соприкасаются (10:00-11:00 и 11:00-12:00), не пересекаются
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.IsBefore(other.End) && other.Start.IsBefore(r.End)
}

// DurationMinutes длительность интервала в минутах
func (r TimeRange) DurationMinutes() int {
	return r.End.Minutes() - r.Start.Minutes()
}

// FindOverlapping возвращает активные записи, пересекающиеся с интервалом
func FindOverlapping(r TimeRange, appointments []*Appointment) []*Appointment {
	overlapping := make([]*Appointment, 0)
	for _, a := range appointments {
		if !a.IsActive() {
			continue
		}
		if r.Overlaps(a.TimeRange()) {
			overlapping = append(overlapping, a)
		}
	}
	return overlapping
}
