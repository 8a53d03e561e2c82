package notifications

import "context"

// LogSender пишет сообщения в лог вместо отправки, для окружений без провайдера
type LogSender struct {
	logger Logger
}

func NewLogSender(logger Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg *Message) error {
	s.logger.Info("notification %s to %s #%d (appointment=%d): %s",
		msg.Kind, msg.Recipient.Role, msg.Recipient.ID, msg.AppointmentID, msg.Text)
	return nil
}
