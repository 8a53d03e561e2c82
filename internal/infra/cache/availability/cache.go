package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const keyPrefix = "availability:staff"

// Source источник блоков доступности (репозиторий)
type Source interface {
	FindByStaffAndDay(ctx context.Context, staffID int64, day time.Weekday) ([]*domain.AvailabilityBlock, error)
}

// Client подмножество команд Redis, используемых кэшем
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Cache read-through кэш блоков доступности в Redis
// Ошибки Redis не прерывают работу: чтение уходит в источник, ошибка логируется.
// Ключ данных содержит версию сотрудника и дня; Invalidate увеличивает версию,
// поэтому запись, загруженная до изменения, попадает в ключ, который больше не читается.
type Cache struct {
	source Source
	client Client
	ttl    time.Duration
	logger Logger
}

// NewCache создает кэш поверх источника
func NewCache(source Source, client Client, ttl time.Duration, logger Logger) *Cache {
	return &Cache{
		source: source,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// cachedBlock представление блока в кэше
type cachedBlock struct {
	ID            int64  `json:"id"`
	StaffID       int64  `json:"staffId"`
	DayOfWeek     int    `json:"dayOfWeek"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	MaxConcurrent int    `json:"maxConcurrent"`
}

// FindByStaffAndDay возвращает блоки из кэша или из источника с последующим сохранением
func (c *Cache) FindByStaffAndDay(ctx context.Context, staffID int64, day time.Weekday) ([]*domain.AvailabilityBlock, error) {
	version, err := c.version(ctx, staffID, day)
	if err != nil {
		c.logger.Warn("AvailabilityCache: get version staff=%d day=%d failed, reading source: %v", staffID, day, err)
		return c.source.FindByStaffAndDay(ctx, staffID, day)
	}
	key := Key(staffID, day, version)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		blocks, decodeErr := decode(raw)
		if decodeErr == nil {
			return blocks, nil
		}
		c.logger.Warn("AvailabilityCache: corrupted entry key=%s: %v", key, decodeErr)
	case errors.Is(err, redis.Nil):
		// промах кэша
	default:
		c.logger.Warn("AvailabilityCache: get key=%s failed, falling back to source: %v", key, err)
	}

	blocks, err := c.source.FindByStaffAndDay(ctx, staffID, day)
	if err != nil {
		return nil, err
	}

	payload, err := encode(blocks)
	if err != nil {
		c.logger.Error("AvailabilityCache: encode key=%s failed: %v", key, err)
		return blocks, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("AvailabilityCache: set key=%s failed: %v", key, err)
	}

	return blocks, nil
}

// Invalidate переводит сотрудника и день на новую версию ключа
// Вызывается после фиксации изменения в базе
func (c *Cache) Invalidate(ctx context.Context, staffID int64, day time.Weekday) error {
	if err := c.client.Incr(ctx, VersionKey(staffID, day)).Err(); err != nil {
		return fmt.Errorf("availability cache: invalidate staff=%d day=%d: %w", staffID, day, err)
	}
	return nil
}

func (c *Cache) version(ctx context.Context, staffID int64, day time.Weekday) (int64, error) {
	version, err := c.client.Get(ctx, VersionKey(staffID, day)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// Key ключ данных для сотрудника, дня недели и версии
func Key(staffID int64, day time.Weekday, version int64) string {
	return fmt.Sprintf("%s:%d:day:%d:v%d", keyPrefix, staffID, int(day), version)
}

// VersionKey ключ счетчика версий сотрудника и дня недели, живет без TTL
func VersionKey(staffID int64, day time.Weekday) string {
	return fmt.Sprintf("%s:%d:day:%d:version", keyPrefix, staffID, int(day))
}

func encode(blocks []*domain.AvailabilityBlock) ([]byte, error) {
	items := make([]cachedBlock, len(blocks))
	for i, b := range blocks {
		items[i] = cachedBlock{
			ID:            b.ID,
			StaffID:       b.StaffID,
			DayOfWeek:     int(b.DayOfWeek),
			StartTime:     b.StartTime.String(),
			EndTime:       b.EndTime.String(),
			MaxConcurrent: b.MaxConcurrent,
		}
	}
	return json.Marshal(items)
}

func decode(raw []byte) ([]*domain.AvailabilityBlock, error) {
	var items []cachedBlock
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	blocks := make([]*domain.AvailabilityBlock, len(items))
	for i, item := range items {
		start, err := types.NewTimeStringFromString(item.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := types.NewTimeStringFromString(item.EndTime)
		if err != nil {
			return nil, err
		}
		blocks[i] = &domain.AvailabilityBlock{
			ID:            item.ID,
			StaffID:       item.StaffID,
			DayOfWeek:     time.Weekday(item.DayOfWeek),
			StartTime:     start,
			EndTime:       end,
			MaxConcurrent: item.MaxConcurrent,
		}
	}
	return blocks, nil
}
