package scheduling

import (
	"errors"
	"fmt"
)

// Причины отказа. Текст ошибки отдается клиенту как есть
var (
	ErrNonPositiveDuration = errors.New("non-positive duration")
	ErrOutsideAvailability = errors.New("outside availability")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
)

// ErrInternal возвращается при ошибках каталога или репозитория
var ErrInternal = errors.New("scheduling: internal error")

// RejectionError отказ в бронировании интервала
type RejectionError struct {
	Reason  error
	StaffID int64
	Detail  string
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason.Error(), e.Detail)
}

func (e *RejectionError) Unwrap() error {
	return e.Reason
}

func reject(reason error, staffID int64, format string, v ...interface{}) *RejectionError {
	return &RejectionError{
		Reason:  reason,
		StaffID: staffID,
		Detail:  fmt.Sprintf(format, v...),
	}
}

// IsRejection сообщает, является ли err отказом валидатора
func IsRejection(err error) bool {
	var rejection *RejectionError
	return errors.As(err, &rejection)
}
