package notifications

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const messageTimeLayout = "Mon 02 Jan 2006 15:04"

// Notifier формирует уведомления о записях и ставит их в очередь
type Notifier struct {
	queue  Enqueuer
	loc    *time.Location
	now    func() time.Time
	logger Logger
}

// NewNotifier создает Notifier. Время в текстах выводится в часовом поясе loc
func NewNotifier(queue Enqueuer, loc *time.Location, logger Logger) *Notifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{
		queue:  queue,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// AppointmentCreated уведомляет сотрудника о новой записи
func (n *Notifier) AppointmentCreated(appt *domain.Appointment) {
	n.push(KindAppointmentCreated, staffRecipient(appt), appt,
		fmt.Sprintf("New appointment #%d: %s on %s with %s.",
			appt.ID, treatmentName(appt), n.when(appt), clientName(appt)))
}

// AppointmentConfirmed уведомляет получателя о подтверждении записи
func (n *Notifier) AppointmentConfirmed(appt *domain.Appointment, role Role) {
	var text string
	recipient := staffRecipient(appt)
	if role == RoleClient {
		recipient = clientRecipient(appt)
		text = fmt.Sprintf("Your appointment #%d for %s on %s with %s is confirmed.",
			appt.ID, treatmentName(appt), n.when(appt), staffName(appt))
	} else {
		text = fmt.Sprintf("Appointment #%d with %s on %s is confirmed.",
			appt.ID, clientName(appt), n.when(appt))
	}
	n.push(KindAppointmentConfirmed, recipient, appt, text)
}

// AppointmentUpdated уведомляет сотрудника об изменении записи
func (n *Notifier) AppointmentUpdated(appt *domain.Appointment) {
	n.push(KindAppointmentUpdated, staffRecipient(appt), appt,
		fmt.Sprintf("Appointment #%d with %s was updated: %s, status %s.",
			appt.ID, clientName(appt), n.when(appt), appt.Status))
}

func (n *Notifier) push(kind Kind, recipient Recipient, appt *domain.Appointment, text string) {
	msg := &Message{
		ID:            uuid.NewString(),
		Kind:          kind,
		AppointmentID: appt.ID,
		Recipient:     recipient,
		Text:          text,
		CreatedAt:     n.now().UTC(),
	}
	if n.queue.Enqueue(msg) {
		n.logger.Info("Notifier: queued %s id=%s for %s id=%d", kind, msg.ID, recipient.Role, recipient.ID)
	}
}

func (n *Notifier) when(appt *domain.Appointment) string {
	return fmt.Sprintf("%s-%s",
		appt.StartTime.In(n.loc).Format(messageTimeLayout),
		appt.EndTime.In(n.loc).Format(domain.TimeFormat))
}

func staffRecipient(appt *domain.Appointment) Recipient {
	r := Recipient{Role: RoleStaff, ID: appt.StaffID}
	if appt.Staff != nil {
		r.Name, r.Email, r.Phone = appt.Staff.Name, appt.Staff.Email, appt.Staff.Phone
	}
	return r
}

func clientRecipient(appt *domain.Appointment) Recipient {
	r := Recipient{Role: RoleClient, ID: appt.ClientID}
	if appt.Client != nil {
		r.Name, r.Email, r.Phone = appt.Client.Name, appt.Client.Email, appt.Client.Phone
	}
	return r
}

func clientName(appt *domain.Appointment) string {
	if appt.Client != nil {
		return appt.Client.Name
	}
	return fmt.Sprintf("client #%d", appt.ClientID)
}

func staffName(appt *domain.Appointment) string {
	if appt.Staff != nil {
		return appt.Staff.Name
	}
	return fmt.Sprintf("staff #%d", appt.StaffID)
}

func treatmentName(appt *domain.Appointment) string {
	if appt.Treatment != nil {
		return appt.Treatment.Name
	}
	return fmt.Sprintf("treatment #%d", appt.TreatmentID)
}
