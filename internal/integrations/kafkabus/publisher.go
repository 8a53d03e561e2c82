package kafkabus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-AppointmentService/internal/service/notifications"
)

var (
	// ErrNoBrokers возвращается, когда список брокеров пуст
	ErrNoBrokers = errors.New("kafkabus: no brokers configured")

	// ErrPublish возвращается при ошибке записи в Kafka
	ErrPublish = errors.New("kafkabus: failed to publish message")
)

// messageWriter часть kafka.Writer, которая нужна публикатору
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher публикует уведомления в топик Kafka, откуда их забирает сервис рассылки
type Publisher struct {
	writer messageWriter
	topic  string
}

// NewPublisher создает публикатор для брокеров "host1:9092,host2:9092"
func NewPublisher(brokers, topic string, writeTimeout time.Duration) (*Publisher, error) {
	addrs := SplitBrokers(brokers)
	if len(addrs) == 0 {
		return nil, ErrNoBrokers
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: writeTimeout,
	}

	return &Publisher{writer: writer, topic: topic}, nil
}

// Send публикует сообщение. Ключ - ID записи, чтобы события одной записи шли по порядку
func (p *Publisher) Send(ctx context.Context, msg *notifications.Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPublish, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(msg.AppointmentID, 10)),
		Value: value,
		Time:  msg.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(msg.ID)},
			{Key: "event_type", Value: []byte(msg.Kind)},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: topic=%s: %v", ErrPublish, p.topic, err)
	}
	return nil
}

// Close закрывает writer, дожидаясь отправки буферизованных сообщений
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// SplitBrokers разбирает список брокеров через запятую
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
