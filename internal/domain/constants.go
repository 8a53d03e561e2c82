package domain

// Business validation constants
const (
	MinConcurrentAppointments = 1
	MaxConcurrentAppointments = 100
	MaxNotesLength            = 1000
	MaxPaymentMethodLength    = 50
	MaxSearchLength           = 100
)

// Listing defaults
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// DefaultTimezone business timezone used when the config does not set one
const DefaultTimezone = "America/Bogota"

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses statuses that occupy capacity of an availability block
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
}

// InactiveStatuses statuses ignored by capacity checks
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusCompleted,
}
