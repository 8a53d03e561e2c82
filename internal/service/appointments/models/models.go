package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrInvalidPaymentStatus возвращается при некорректном статусе оплаты
	ErrInvalidPaymentStatus = errors.New("invalid payment status")

	// ErrInvalidSort возвращается при неизвестном поле или направлении сортировки
	ErrInvalidSort = errors.New("invalid sort")
)

// Request модели

// ListRequest параметры списка записей в том виде, в котором они пришли из query string
type ListRequest struct {
	ClientID      *int64
	StaffID       *int64
	Status        *string
	PaymentStatus *string
	From          *time.Time
	To            *time.Time
	Search        *string
	Page          int
	Limit         int
	SortBy        *string
	SortOrder     *string
	Include       domain.IncludeSet
}

// ToDomainQuery конвертирует request в domain запрос с дефолтами
func (r *ListRequest) ToDomainQuery() (domain.AppointmentListQuery, error) {
	q := domain.AppointmentListQuery{
		ClientID: r.ClientID,
		StaffID:  r.StaffID,
		From:     r.From,
		To:       r.To,
		Page:     r.Page,
		Limit:    r.Limit,
		Include:  r.Include,
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return q, err
		}
		q.Status = &status
	}

	if r.PaymentStatus != nil {
		payment, err := ToDomainPaymentStatus(*r.PaymentStatus)
		if err != nil {
			return q, err
		}
		q.PaymentStatus = &payment
	}

	if r.Search != nil {
		search := strings.TrimSpace(*r.Search)
		if len(search) > domain.MaxSearchLength {
			return q, fmt.Errorf("search must be at most %d characters", domain.MaxSearchLength)
		}
		if search != "" {
			q.Search = &search
		}
	}

	if r.SortBy != nil {
		key := domain.AppointmentSortKey(*r.SortBy)
		if !key.Valid() {
			return q, fmt.Errorf("%w: unknown sort field %q", ErrInvalidSort, *r.SortBy)
		}
		q.SortBy = key
	}

	if r.SortOrder != nil {
		order := domain.SortOrder(strings.ToUpper(*r.SortOrder))
		if order != domain.SortAsc && order != domain.SortDesc {
			return q, fmt.Errorf("%w: unknown sort order %q", ErrInvalidSort, *r.SortOrder)
		}
		q.SortOrder = order
	}

	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		return q, errors.New("from must be before to")
	}

	q.Normalize()
	return q, nil
}

// Response модели

// ClientResponse данные клиента
type ClientResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// StaffResponse данные сотрудника
type StaffResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// TreatmentResponse данные услуги
type TreatmentResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
}

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"clientId"`
	StaffID     int64     `json:"staffId"`
	TreatmentID int64     `json:"treatmentId"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Status      string    `json:"status"`

	Price         float64 `json:"price"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
	PaymentStatus string  `json:"paymentStatus"`
	Notes         *string `json:"notes,omitempty"`

	Client    *ClientResponse    `json:"client,omitempty"`
	Staff     *StaffResponse     `json:"staff,omitempty"`
	Treatment *TreatmentResponse `json:"treatment,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со страницей записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:            a.ID,
		ClientID:      a.ClientID,
		StaffID:       a.StaffID,
		TreatmentID:   a.TreatmentID,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Status:        string(a.Status),
		Price:         a.Price,
		PaymentMethod: a.PaymentMethod,
		PaymentStatus: string(a.PaymentStatus),
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}

	if a.Client != nil {
		resp.Client = &ClientResponse{ID: a.Client.ID, Name: a.Client.Name, Email: a.Client.Email, Phone: a.Client.Phone}
	}
	if a.Staff != nil {
		resp.Staff = &StaffResponse{ID: a.Staff.ID, Name: a.Staff.Name, Email: a.Staff.Email, Phone: a.Staff.Phone}
	}
	if a.Treatment != nil {
		resp.Treatment = &TreatmentResponse{
			ID:              a.Treatment.ID,
			Name:            a.Treatment.Name,
			DurationMinutes: a.Treatment.DurationMinutes,
			Price:           a.Treatment.Price,
		}
	}

	return resp
}

// FromDomainAppointments конвертирует список domain моделей в DTO
func FromDomainAppointments(appointments []*domain.Appointment) []AppointmentResponse {
	result := make([]AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		if resp := FromDomainAppointment(a); resp != nil {
			result = append(result, *resp)
		}
	}
	return result
}

// ToDomainStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(strings.ToLower(status))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s, nil
}

// ToDomainPaymentStatus конвертирует строку в domain.PaymentStatus с валидацией
func ToDomainPaymentStatus(status string) (domain.PaymentStatus, error) {
	p := domain.PaymentStatus(strings.ToLower(status))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, status)
	}
	return p, nil
}
