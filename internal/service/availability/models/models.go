package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// CreateBlockRequest запрос на создание блока доступности
type CreateBlockRequest struct {
	StaffID       int64  `json:"staffId"`
	DayOfWeek     int    `json:"dayOfWeek"` // 0 = воскресенье ... 6 = суббота
	StartTime     string `json:"startTime"` // "09:00"
	EndTime       string `json:"endTime"`   // "12:00"
	MaxConcurrent int    `json:"maxConcurrent"`
}

// BlockResponse ответ с данными блока доступности
type BlockResponse struct {
	ID            int64     `json:"id"`
	StaffID       int64     `json:"staffId"`
	DayOfWeek     int       `json:"dayOfWeek"`
	DayName       string    `json:"dayName"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	MaxConcurrent int       `json:"maxConcurrent"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BlockListResponse ответ со списком блоков
type BlockListResponse struct {
	Blocks []BlockResponse `json:"blocks"`
}

// FromDomainBlock конвертирует domain модель в DTO
func FromDomainBlock(b *domain.AvailabilityBlock) *BlockResponse {
	if b == nil {
		return nil
	}
	return &BlockResponse{
		ID:            b.ID,
		StaffID:       b.StaffID,
		DayOfWeek:     int(b.DayOfWeek),
		DayName:       b.DayOfWeek.String(),
		StartTime:     b.StartTime.String(),
		EndTime:       b.EndTime.String(),
		MaxConcurrent: b.MaxConcurrent,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// FromDomainBlockList конвертирует список domain моделей в DTO
func FromDomainBlockList(blocks []*domain.AvailabilityBlock) *BlockListResponse {
	resp := &BlockListResponse{Blocks: make([]BlockResponse, 0, len(blocks))}
	for _, b := range blocks {
		if dto := FromDomainBlock(b); dto != nil {
			resp.Blocks = append(resp.Blocks, *dto)
		}
	}
	return resp
}
