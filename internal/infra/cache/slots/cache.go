// Package slots кэш списка свободных слотов профессионала на дату.
package slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const keyPrefix = "appointments:slots"

var (
	// ErrCache возвращается при ошибках обращения к redis
	ErrCache = errors.New("slots.cache: redis error")

	// ErrDecode возвращается, если значение в кэше повреждено
	ErrDecode = errors.New("slots.cache: failed to decode cached slots")
)

// RedisCache кэш в redis с фиксированным TTL
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache создает кэш поверх клиента redis
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get возвращает закэшированные слоты; второй результат false при промахе
func (c *RedisCache) Get(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]domain.Slot, bool, error) {
	raw, err := c.client.Get(ctx, Key(professionalID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get: %v", ErrCache, err)
	}

	slots, err := decode(raw)
	if err != nil {
		return nil, false, err
	}
	return slots, true, nil
}

// Set сохраняет слоты на TTL
func (c *RedisCache) Set(ctx context.Context, professionalID uuid.UUID, date time.Time, slots []domain.Slot) error {
	raw, err := encode(slots)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, Key(professionalID, date), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %v", ErrCache, err)
	}
	return nil
}

// Invalidate удаляет запись кэша после изменения занятости
func (c *RedisCache) Invalidate(ctx context.Context, professionalID uuid.UUID, date time.Time) error {
	if err := c.client.Del(ctx, Key(professionalID, date)).Err(); err != nil {
		return fmt.Errorf("%w: del: %v", ErrCache, err)
	}
	return nil
}

// Ping проверяет соединение с redis
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Noop кэш, который никогда не хранит данные (cache.enabled = false)
type Noop struct{}

func (Noop) Get(context.Context, uuid.UUID, time.Time) ([]domain.Slot, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, uuid.UUID, time.Time, []domain.Slot) error { return nil }

func (Noop) Invalidate(context.Context, uuid.UUID, time.Time) error { return nil }

// Key ключ кэша для профессионала и даты
func Key(professionalID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, professionalID, date.Format(types.DateFormat))
}

type cachedSlot struct {
	ID             uuid.UUID        `json:"id"`
	ProfessionalID uuid.UUID        `json:"professionalId"`
	Date           string           `json:"date"`
	StartTime      types.TimeString `json:"startTime"`
	EndTime        types.TimeString `json:"endTime"`
	IsAvailable    bool             `json:"isAvailable"`
}

func encode(slots []domain.Slot) ([]byte, error) {
	out := make([]cachedSlot, len(slots))
	for i, s := range slots {
		out[i] = cachedSlot{
			ID:             s.ID,
			ProfessionalID: s.ProfessionalID,
			Date:           s.Date.Format(types.DateFormat),
			StartTime:      s.StartTime,
			EndTime:        s.EndTime,
			IsAvailable:    s.IsAvailable,
		}
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrCache, err)
	}
	return raw, nil
}

func decode(raw []byte) ([]domain.Slot, error) {
	var cached []cachedSlot
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	out := make([]domain.Slot, len(cached))
	for i, c := range cached {
		date, err := types.ParseDate(c.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q: %v", ErrDecode, c.Date, err)
		}
		out[i] = domain.Slot{
			ID:             c.ID,
			ProfessionalID: c.ProfessionalID,
			Date:           date,
			StartTime:      c.StartTime,
			EndTime:        c.EndTime,
			IsAvailable:    c.IsAvailable,
		}
	}
	return out, nil
}
