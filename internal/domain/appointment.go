package domain

import (
	"errors"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// PaymentStatus represents the payment state of an appointment
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

var (
	// ErrCompletedRequiresPayment is returned when an appointment would be completed without being paid
	ErrCompletedRequiresPayment = errors.New("completed appointment must be paid")

	// ErrInvalidTransition is returned for a status change the lifecycle does not allow
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus is returned for an unknown appointment or payment status
	ErrInvalidStatus = errors.New("invalid status")
)

// Appointment represents a booked treatment for a client with a staff member
type Appointment struct {
	ID          int64
	ClientID    int64
	StaffID     int64
	TreatmentID int64
	StartTime   time.Time
	EndTime     time.Time
	Status      AppointmentStatus

	Price         float64
	PaymentMethod *string
	PaymentStatus PaymentStatus
	Notes         *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Hydrated relations, populated only when requested via IncludeSet
	Client    *Client
	Staff     *Staff
	Treatment *Treatment
}

// IsActive returns true if the appointment counts toward staff capacity
func (a *Appointment) IsActive() bool {
	return a.Status.IsActive()
}

// Duration returns the length of the appointment
func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// IsActive returns true for statuses that occupy capacity
func (s AppointmentStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal returns true for statuses that allow no further transitions
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known status
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Valid reports whether p is a known payment status
func (p PaymentStatus) Valid() bool {
	return p == PaymentPending || p == PaymentPaid
}

// allowedTransitions lists the statuses reachable from each non-terminal status
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

// CanTransition reports whether an appointment may move from one status to another.
// Keeping the current status is always allowed.
func CanTransition(from, to AppointmentStatus) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckPayment enforces that a completed appointment is paid
func CheckPayment(status AppointmentStatus, payment PaymentStatus) error {
	if status == StatusCompleted && payment != PaymentPaid {
		return ErrCompletedRequiresPayment
	}
	return nil
}
