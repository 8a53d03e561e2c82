package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// candidate интервал слота до подсчета занятости
type candidate struct {
	block *domain.AvailabilityBlock
	start time.Time
	end   time.Time
}

// generateCandidates нарезает блоки на слоты длиной в услугу с шагом в длительность услуги.
// Минуты отсчитываются от локальной полуночи так же, как при проверке записи,
// поэтому каждый слот проходит проверку расписания.
// На сегодня отбрасываются слоты, начинающиеся раньше notBefore.
func generateCandidates(
	blocks []*domain.AvailabilityBlock,
	midnight time.Time,
	durationMinutes int,
	notBefore time.Time,
) ([]candidate, error) {
	result := make([]candidate, 0)

	for _, block := range blocks {
		blockStart, err := block.StartTime.Minutes()
		if err != nil {
			return nil, err
		}
		blockEnd, err := block.EndTime.Minutes()
		if err != nil {
			return nil, err
		}

		for start := blockStart; start+durationMinutes <= blockEnd; start += durationMinutes {
			slotStart := midnight.Add(time.Duration(start) * time.Minute)
			if slotStart.Before(notBefore) {
				continue
			}
			result = append(result, candidate{
				block: block,
				start: slotStart,
				end:   slotStart.Add(time.Duration(durationMinutes) * time.Minute),
			})
		}
	}

	return result, nil
}

// span возвращает минимальное начало и максимальное окончание среди слотов
func span(candidates []candidate) (time.Time, time.Time) {
	from, to := candidates[0].start, candidates[0].end
	for _, c := range candidates[1:] {
		if c.start.Before(from) {
			from = c.start
		}
		if c.end.After(to) {
			to = c.end
		}
	}
	return from, to
}

// countOverlapping считает записи, пересекающиеся с [start, end): a.start < end AND a.end > start
func countOverlapping(busy []*domain.Appointment, start, end time.Time) int {
	count := 0
	for _, a := range busy {
		if a.StartTime.Before(end) && a.EndTime.After(start) {
			count++
		}
	}
	return count
}
