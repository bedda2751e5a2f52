package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const keyPrefix = "schedule:location:"

// Store кэширует расписания локаций в Redis поверх репозитория (read-through).
// Ошибки Redis не пробрасываются: чтение уходит в репозиторий.
type Store struct {
	repo   Repository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger Logger
}

// NewStore создает кэширующее хранилище. С nil клиентом или нулевым ttl кэш отключен.
func NewStore(repo Repository, rdb redis.Cmdable, ttl time.Duration, logger Logger) *Store {
	return &Store{
		repo:   repo,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// GetLocationSchedule возвращает расписание из кэша или из репозитория
func (s *Store) GetLocationSchedule(ctx context.Context, locationID int64) (*domain.LocationSchedule, error) {
	if cached, ok := s.readCache(ctx, locationID); ok {
		return cached, nil
	}

	schedule, err := s.repo.GetLocationSchedule(ctx, locationID)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, schedule)
	return schedule, nil
}

// ReplaceLocationSchedule записывает расписание в репозиторий и сбрасывает кэш
func (s *Store) ReplaceLocationSchedule(ctx context.Context, schedule *domain.LocationSchedule) error {
	if err := s.repo.ReplaceLocationSchedule(ctx, schedule); err != nil {
		return err
	}
	s.Invalidate(ctx, schedule.LocationID)
	return nil
}

// Invalidate удаляет расписание локации из кэша
func (s *Store) Invalidate(ctx context.Context, locationID int64) {
	if !s.enabled() {
		return
	}
	if err := s.rdb.Del(ctx, cacheKey(locationID)).Err(); err != nil {
		s.logger.Warn("ScheduleCache: failed to invalidate location=%d: %v", locationID, err)
	}
}

func (s *Store) enabled() bool {
	return s.rdb != nil && s.ttl > 0
}

func (s *Store) readCache(ctx context.Context, locationID int64) (*domain.LocationSchedule, bool) {
	if !s.enabled() {
		return nil, false
	}

	val, err := s.rdb.Get(ctx, cacheKey(locationID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("ScheduleCache: read location=%d failed, falling back to repository: %v", locationID, err)
		}
		return nil, false
	}

	var cached cachedSchedule
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		s.logger.Warn("ScheduleCache: corrupted entry for location=%d: %v", locationID, err)
		return nil, false
	}

	schedule, err := cached.toDomain()
	if err != nil {
		s.logger.Warn("ScheduleCache: corrupted entry for location=%d: %v", locationID, err)
		return nil, false
	}

	return schedule, true
}

func (s *Store) writeCache(ctx context.Context, schedule *domain.LocationSchedule) {
	if !s.enabled() {
		return
	}

	data, err := json.Marshal(toCached(schedule))
	if err != nil {
		s.logger.Error("ScheduleCache: marshal location=%d: %v", schedule.LocationID, err)
		return
	}

	if err := s.rdb.Set(ctx, cacheKey(schedule.LocationID), data, s.ttl).Err(); err != nil {
		s.logger.Warn("ScheduleCache: write location=%d failed: %v", schedule.LocationID, err)
	}
}

func cacheKey(locationID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, locationID)
}
