package domain

// StaffWorkload сотрудник и его загрузка за последние StaffWorkloadWindowDays дней
type StaffWorkload struct {
	StaffID                     string
	FirstName                   *string
	LastName                    *string
	Email                       *string
	TotalAppointments           int
	CompletedAppointments       int
	AvgAppointmentDurationHours *float64
}
