package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Транспорты уведомлений
const (
	TransportHTTP  = "http"
	TransportKafka = "kafka"
	TransportLog   = "log"
)

// ErrInvalidConfig возвращается при некорректной конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Business      BusinessConfig      `toml:"business"`
	Notifications NotificationsConfig `toml:"notifications"`
	Redis         RedisConfig         `toml:"redis"`
}

// ServerConfig параметры HTTP сервера, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig параметры подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig параметры логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig параметры Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BusinessConfig параметры бизнеса
type BusinessConfig struct {
	Timezone           string `toml:"timezone"`             // IANA, например America/Bogota
	AdvanceBookingDays int    `toml:"advance_booking_days"` // горизонт свободных слотов, 0 - без ограничения
	MinNoticeMinutes   int    `toml:"min_notice_minutes"`   // слоты на сегодня не ближе этого времени
}

// Location часовой пояс бизнеса
func (b BusinessConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q: %v", ErrInvalidConfig, b.Timezone, err)
	}
	return loc, nil
}

// NotificationsConfig параметры очереди уведомлений
type NotificationsConfig struct {
	Transport   string          `toml:"transport"` // http, kafka или log
	QueueSize   int             `toml:"queue_size"`
	IntervalMs  int             `toml:"interval_ms"` // минимальный интервал между отправками
	Burst       int             `toml:"burst"`
	SendTimeout int             `toml:"send_timeout"` // секунды
	Messaging   MessagingConfig `toml:"messaging"`
	Kafka       KafkaConfig     `toml:"kafka"`
}

// Interval минимальный интервал между отправками
func (n NotificationsConfig) Interval() time.Duration {
	return time.Duration(n.IntervalMs) * time.Millisecond
}

// MessagingConfig HTTP API провайдера сообщений
type MessagingConfig struct {
	URL     string `toml:"url"`
	Token   string `toml:"token"`
	Timeout int    `toml:"timeout"` // секунды
}

// KafkaConfig параметры публикации уведомлений в Kafka
type KafkaConfig struct {
	Brokers      string `toml:"brokers"` // через запятую
	Topic        string `toml:"topic"`
	WriteTimeout int    `toml:"write_timeout"` // секунды
}

// RedisConfig кэш доступности
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      int    `toml:"ttl"` // секунды
}

// Load читает .env (если есть), TOML файл, применяет переменные окружения и дефолты
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv секреты из окружения приоритетнее файла
func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("MESSAGING_TOKEN"); v != "" {
		c.Notifications.Messaging.Token = v
	}
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 10)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "appointment-service"
	}

	if c.Business.Timezone == "" {
		c.Business.Timezone = domain.DefaultTimezone
	}

	if c.Notifications.Transport == "" {
		c.Notifications.Transport = TransportLog
	}
	setDefault(&c.Notifications.QueueSize, 100)
	setDefault(&c.Notifications.IntervalMs, 6000)
	setDefault(&c.Notifications.Burst, 1)
	setDefault(&c.Notifications.SendTimeout, 10)
	setDefault(&c.Notifications.Messaging.Timeout, 10)
	setDefault(&c.Notifications.Kafka.WriteTimeout, 10)
	if c.Notifications.Kafka.Topic == "" {
		c.Notifications.Kafka.Topic = "appointment-notifications"
	}

	setDefault(&c.Redis.TTL, 300)
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("server.http_port %d out of range", c.Server.HTTPPort))
	}
	if c.Database.Host == "" {
		problems = append(problems, "database.host is required")
	}
	if c.Database.DBName == "" {
		problems = append(problems, "database.dbname is required")
	}
	if c.Business.AdvanceBookingDays < 0 || c.Business.MinNoticeMinutes < 0 {
		problems = append(problems, "business.advance_booking_days and business.min_notice_minutes must not be negative")
	}
	if _, err := c.Business.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("business.timezone %q is not a known IANA zone", c.Business.Timezone))
	}

	switch c.Notifications.Transport {
	case TransportLog:
	case TransportHTTP:
		if c.Notifications.Messaging.URL == "" {
			problems = append(problems, "notifications.messaging.url is required for http transport")
		}
	case TransportKafka:
		if strings.TrimSpace(c.Notifications.Kafka.Brokers) == "" {
			problems = append(problems, "notifications.kafka.brokers is required for kafka transport")
		}
	default:
		problems = append(problems, fmt.Sprintf("notifications.transport %q is not one of http, kafka, log", c.Notifications.Transport))
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		problems = append(problems, "redis.addr is required when redis is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func setDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}
