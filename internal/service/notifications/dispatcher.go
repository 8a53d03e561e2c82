package notifications

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultQueueSize   = 100
	defaultSendTimeout = 10 * time.Second
)

// Config параметры очереди уведомлений
type Config struct {
	QueueSize   int
	Interval    time.Duration // минимальный интервал между отправками, 0 - без ограничения
	Burst       int
	SendTimeout time.Duration
}

// Dispatcher очередь уведомлений с одним обработчиком и token bucket ограничением.
// Доставка at-most-once: ошибки логируются и не повторяются.
type Dispatcher struct {
	sender      Sender
	queue       chan *Message
	limiter     *rate.Limiter
	sendTimeout time.Duration
	metrics     Metrics
	logger      Logger
}

// NewDispatcher создает очередь. metrics может быть nil
func NewDispatcher(sender Sender, cfg Config, metrics Metrics, logger Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}

	return &Dispatcher{
		sender:      sender,
		queue:       make(chan *Message, cfg.QueueSize),
		limiter:     rate.NewLimiter(limit, cfg.Burst),
		sendTimeout: cfg.SendTimeout,
		metrics:     metrics,
		logger:      logger,
	}
}

// Enqueue ставит сообщение в очередь без блокировки.
// При переполненной очереди сообщение отбрасывается.
func (d *Dispatcher) Enqueue(msg *Message) bool {
	select {
	case d.queue <- msg:
		d.metrics.SetNotificationQueue(len(d.queue))
		return true
	default:
		d.logger.Error("Enqueue: queue is full, dropping %s id=%s for %s id=%d",
			msg.Kind, msg.ID, msg.Recipient.Role, msg.Recipient.ID)
		d.metrics.ObserveNotification(string(msg.Kind), resultDropped)
		return false
	}
}

// Pending количество сообщений в очереди
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

// Run обрабатывает очередь до отмены ctx
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("Dispatcher: started, queue capacity=%d, limit=%v/s", cap(d.queue), d.limiter.Limit())

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Dispatcher: stopped, %d messages left undelivered", len(d.queue))
			return
		case msg := <-d.queue:
			d.metrics.SetNotificationQueue(len(d.queue))
			d.deliver(ctx, msg)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg *Message) {
	if err := d.limiter.Wait(ctx); err != nil {
		d.logger.Warn("Dispatcher: %s id=%s not sent: %v", msg.Kind, msg.ID, err)
		d.metrics.ObserveNotification(string(msg.Kind), resultDropped)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := d.sender.Send(sendCtx, msg); err != nil {
		d.logger.Error("Dispatcher: failed to send %s id=%s to %s id=%d: %v",
			msg.Kind, msg.ID, msg.Recipient.Role, msg.Recipient.ID, err)
		d.metrics.ObserveNotification(string(msg.Kind), resultFailed)
		return
	}

	d.metrics.ObserveNotification(string(msg.Kind), resultSent)
}
