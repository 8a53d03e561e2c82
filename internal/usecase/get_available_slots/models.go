package get_available_slots

import "time"

// Options ограничения горизонта записи
type Options struct {
	AdvanceBookingDays int // 0 - без ограничения
	MinNoticeMinutes   int // минимальное время до начала слота на сегодня
}

// Request модель запроса свободных слотов
type Request struct {
	StaffID     int64
	TreatmentID int64
	Date        string // YYYY-MM-DD в часовом поясе бизнеса
}

// Response модель ответа со списком слотов
type Response struct {
	Date        string
	StaffID     int64
	TreatmentID int64
	Slots       []Slot
}

// Slot кандидат на запись длиной в услугу внутри блока доступности
type Slot struct {
	BlockID         int64
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
	AvailableSpots  int
	TotalSpots      int
}
