package scheduling

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// LocalWindow интервал записи в часовом поясе бизнеса
type LocalWindow struct {
	Weekday      time.Weekday
	StartMinutes int // минуты от локальной полуночи дня начала
	EndMinutes   int // больше 24*60, если запись переходит через полночь
}

// Start время начала в формате HH:MM
func (w LocalWindow) Start() types.TimeString {
	return formatMinutes(w.StartMinutes)
}

// End время окончания, для записей через полночь часы больше 23
func (w LocalWindow) End() types.TimeString {
	return formatMinutes(w.EndMinutes)
}

// Fits проверяет, что интервал целиком лежит внутри блока [block.start, block.end)
func (w LocalWindow) Fits(blockStart, blockEnd int) bool {
	return w.StartMinutes >= blockStart && w.EndMinutes <= blockEnd
}

// Clock переводит абсолютное время в локальное время бизнеса
type Clock struct {
	loc *time.Location
}

// NewClock создает Clock для часового пояса бизнеса
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc}
}

// Location часовой пояс бизнеса
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Window вычисляет день недели и локальные минуты начала/окончания.
// День недели берется по началу записи. Конец отсчитывается от полуночи дня начала,
// поэтому запись через полночь не помещается ни в один блок.
// Секунды начала отбрасываются, секунды окончания округляются вверх.
func (c *Clock) Window(start, end time.Time) LocalWindow {
	localStart := start.In(c.loc)
	midnight := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, c.loc)

	startOffset := localStart.Sub(midnight)
	endOffset := end.In(c.loc).Sub(midnight)

	endMinutes := int(endOffset / time.Minute)
	if endOffset%time.Minute != 0 {
		endMinutes++
	}

	return LocalWindow{
		Weekday:      localStart.Weekday(),
		StartMinutes: int(startOffset / time.Minute),
		EndMinutes:   endMinutes,
	}
}

func formatMinutes(m int) types.TimeString {
	return types.TimeString(fmt.Sprintf("%02d:%02d", m/60, m%60))
}
