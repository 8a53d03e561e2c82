package notifications

import "context"

// Sender доставляет сообщение во внешний канал (webhook мессенджера, Kafka)
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Enqueuer очередь исходящих сообщений
type Enqueuer interface {
	Enqueue(msg *Message) bool
}

// Metrics интерфейс метрик доставки
type Metrics interface {
	ObserveNotification(kind, result string)
	SetNotificationQueue(depth int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type noopMetrics struct{}

func (noopMetrics) ObserveNotification(string, string) {}
func (noopMetrics) SetNotificationQueue(int)           {}
