package messaging

import "github.com/m04kA/SMC-AppointmentService/internal/service/notifications"

// Каналы доставки
const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// outgoing тело запроса к провайдеру
type outgoing struct {
	ID            string `json:"id"`
	Channel       string `json:"channel"`
	To            string `json:"to"`
	Name          string `json:"name,omitempty"`
	Text          string `json:"text"`
	Kind          string `json:"kind"`
	AppointmentID int64  `json:"appointmentId"`
}

// ErrorResponse модель ошибки провайдера
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// newOutgoing выбирает канал: телефон приоритетнее email
func newOutgoing(msg *notifications.Message) (*outgoing, error) {
	out := &outgoing{
		ID:            msg.ID,
		Name:          msg.Recipient.Name,
		Text:          msg.Text,
		Kind:          string(msg.Kind),
		AppointmentID: msg.AppointmentID,
	}

	switch {
	case msg.Recipient.Phone != nil && *msg.Recipient.Phone != "":
		out.Channel, out.To = ChannelWhatsApp, *msg.Recipient.Phone
	case msg.Recipient.Email != nil && *msg.Recipient.Email != "":
		out.Channel, out.To = ChannelEmail, *msg.Recipient.Email
	default:
		return nil, ErrNoContact
	}

	return out, nil
}
