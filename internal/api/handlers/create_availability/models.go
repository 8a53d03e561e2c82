package create_availability

import (
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
)

// CreateBlockRequest HTTP request model, сотрудник берется из пути
type CreateBlockRequest struct {
	DayOfWeek     int    `json:"dayOfWeek"` // 0 = воскресенье
	StartTime     string `json:"startTime"` // "09:00"
	EndTime       string `json:"endTime"`
	MaxConcurrent *int   `json:"maxConcurrent,omitempty"` // по умолчанию 1
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CreateBlockRequest) ToServiceRequest(staffID int64) *models.CreateBlockRequest {
	maxConcurrent := 1
	if r.MaxConcurrent != nil {
		maxConcurrent = *r.MaxConcurrent
	}
	return &models.CreateBlockRequest{
		StaffID:       staffID,
		DayOfWeek:     r.DayOfWeek,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		MaxConcurrent: maxConcurrent,
	}
}
