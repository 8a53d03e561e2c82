package domain

import (
	"fmt"
	"strings"
	"time"
)

// IncludeSet selects which related entities are loaded alongside appointments
type IncludeSet uint8

const (
	IncludeClient IncludeSet = 1 << iota
	IncludeStaff
	IncludeTreatment

	IncludeNone IncludeSet = 0
	IncludeAll             = IncludeClient | IncludeStaff | IncludeTreatment
)

// Has reports whether the set contains every flag of other
func (s IncludeSet) Has(other IncludeSet) bool {
	return s&other == other
}

// ParseIncludeSet parses a comma-separated list: client, staff, treatment or all
func ParseIncludeSet(raw string) (IncludeSet, error) {
	set := IncludeNone
	if strings.TrimSpace(raw) == "" {
		return set, nil
	}

	for _, part := range strings.Split(raw, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "client":
			set |= IncludeClient
		case "staff":
			set |= IncludeStaff
		case "treatment":
			set |= IncludeTreatment
		case "all":
			set |= IncludeAll
		case "":
		default:
			return IncludeNone, fmt.Errorf("unknown include %q", part)
		}
	}
	return set, nil
}

// AppointmentSortKey column an appointment list can be ordered by
type AppointmentSortKey string

const (
	SortByID         AppointmentSortKey = "id"
	SortByStartTime  AppointmentSortKey = "startTime"
	SortByClientName AppointmentSortKey = "clientName"
	SortByStaffName  AppointmentSortKey = "staffName"
	SortByStatus     AppointmentSortKey = "status"
	SortByPrice      AppointmentSortKey = "price"
)

// Valid reports whether k is a recognized sort key
func (k AppointmentSortKey) Valid() bool {
	switch k {
	case SortByID, SortByStartTime, SortByClientName, SortByStaffName, SortByStatus, SortByPrice:
		return true
	}
	return false
}

// SortOrder direction of ordering
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// AppointmentListQuery enumerates every recognized filter, paging and sort option for listing appointments.
// Zero values mean "no filter"; Normalize applies the documented defaults
// (sort by startTime DESC, page 1, limit 10, limit capped at 100).
type AppointmentListQuery struct {
	ClientID      *int64
	StaffID       *int64
	Status        *AppointmentStatus
	PaymentStatus *PaymentStatus
	From          *time.Time // start_time >= From
	To            *time.Time // start_time < To
	Search        *string    // matches client, staff or treatment name and notes

	Page      int
	Limit     int
	SortBy    AppointmentSortKey
	SortOrder SortOrder

	Include IncludeSet
}

// Normalize fills defaults and clamps paging
func (q *AppointmentListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if !q.SortBy.Valid() {
		q.SortBy = SortByStartTime
	}
	if q.SortOrder != SortAsc && q.SortOrder != SortDesc {
		q.SortOrder = SortDesc
	}
}

// Offset returns the number of rows to skip for the current page
func (q *AppointmentListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}
