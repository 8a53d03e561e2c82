package notifications

import "time"

// Kind тип уведомления
type Kind string

const (
	KindAppointmentCreated   Kind = "appointment_created"
	KindAppointmentConfirmed Kind = "appointment_confirmed"
	KindAppointmentUpdated   Kind = "appointment_updated"
)

// Role получатель уведомления
type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "staff"
)

// Recipient адресат сообщения
type Recipient struct {
	Role  Role    `json:"role"`
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// Message исходящее уведомление
type Message struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	AppointmentID int64     `json:"appointmentId"`
	Recipient     Recipient `json:"recipient"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Результаты доставки для метрик
const (
	resultSent    = "sent"
	resultFailed  = "failed"
	resultDropped = "dropped"
)
