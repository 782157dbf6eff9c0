package models

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// StaffWorkloadResponse сотрудник и его загрузка за последние 30 дней
type StaffWorkloadResponse struct {
	ID                          string   `json:"id"`
	FirstName                   *string  `json:"firstName"`
	LastName                    *string  `json:"lastName"`
	Email                       *string  `json:"email"`
	TotalAppointments           int      `json:"totalAppointments"`
	CompletedAppointments       int      `json:"completedAppointments"`
	AvgAppointmentDurationHours *float64 `json:"avgAppointmentDurationHours"`
}

// StaffListResponse ответ со списком сотрудников
type StaffListResponse struct {
	Staff []StaffWorkloadResponse `json:"staff"`
}

// FromDomainWorkloadList конвертирует список domain моделей в DTO
func FromDomainWorkloadList(items []*domain.StaffWorkload) *StaffListResponse {
	resp := &StaffListResponse{Staff: make([]StaffWorkloadResponse, 0, len(items))}
	for _, w := range items {
		resp.Staff = append(resp.Staff, StaffWorkloadResponse{
			ID:                          w.StaffID,
			FirstName:                   w.FirstName,
			LastName:                    w.LastName,
			Email:                       w.Email,
			TotalAppointments:           w.TotalAppointments,
			CompletedAppointments:       w.CompletedAppointments,
			AvgAppointmentDurationHours: w.AvgAppointmentDurationHours,
		})
	}
	return resp
}
