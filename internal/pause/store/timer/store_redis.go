package timer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"flowguard/internal/pause/models"
	id "flowguard/pkg/domain"
)

const (
	// zsetKey orders timer ids by fire time (unix seconds as score).
	zsetKey = "flowguard:timers:by_fire_at"
	// timerKeyPrefix stores the serialized timer body per id.
	timerKeyPrefix = "flowguard:timer:"
)

// RedisTimerStore persists resumption timers in Redis: a sorted set scored by
// fire time for due-scanning, plus one JSON value per timer. Pauses spanning
// days survive process restarts.
type RedisTimerStore struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *RedisTimerStore {
	return &RedisTimerStore{client: client}
}

type storedTimer struct {
	ID        string    `json:"id"`
	RecordIDs []string  `json:"record_ids"`
	FireAt    time.Time `json:"fire_at"`
	CreatedAt time.Time `json:"created_at"`
}

func timerKey(timerID string) string { return timerKeyPrefix + timerID }

func (s *RedisTimerStore) Schedule(ctx context.Context, timer *models.ResumeTimer) error {
	records := make([]string, len(timer.RecordIDs))
	for i, r := range timer.RecordIDs {
		records[i] = r.String()
	}
	body, err := json.Marshal(storedTimer{
		ID:        timer.ID.String(),
		RecordIDs: records,
		FireAt:    timer.FireAt,
		CreatedAt: timer.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal timer: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, timerKey(timer.ID.String()), body, 0)
	pipe.ZAdd(ctx, zsetKey, redis.Z{Score: float64(timer.FireAt.Unix()), Member: timer.ID.String()})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("schedule timer: %w", err)
	}
	return nil
}

func (s *RedisTimerStore) Due(ctx context.Context, now time.Time) ([]*models.ResumeTimer, error) {
	ids, err := s.client.ZRangeByScore(ctx, zsetKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.Unix()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("scan due timers: %w", err)
	}

	var due []*models.ResumeTimer
	for _, timerID := range ids {
		body, err := s.client.Get(ctx, timerKey(timerID)).Bytes()
		if err == redis.Nil {
			// Body already cancelled; drop the dangling zset member.
			s.client.ZRem(ctx, zsetKey, timerID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load timer %s: %w", timerID, err)
		}
		timer, err := decodeTimer(body)
		if err != nil {
			return nil, err
		}
		due = append(due, timer)
	}
	return due, nil
}

func (s *RedisTimerStore) Complete(ctx context.Context, timerID id.TimerID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, timerKey(timerID.String()))
	pipe.ZRem(ctx, zsetKey, timerID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("complete timer: %w", err)
	}
	return nil
}

func (s *RedisTimerStore) CancelByRecord(ctx context.Context, recordID id.RecordID) error {
	ids, err := s.client.ZRange(ctx, zsetKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("list timers: %w", err)
	}

	target := recordID.String()
	for _, timerID := range ids {
		body, err := s.client.Get(ctx, timerKey(timerID)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return fmt.Errorf("load timer %s: %w", timerID, err)
		}

		var stored storedTimer
		if err := json.Unmarshal(body, &stored); err != nil {
			return fmt.Errorf("decode timer %s: %w", timerID, err)
		}

		remaining := stored.RecordIDs[:0]
		for _, r := range stored.RecordIDs {
			if r != target {
				remaining = append(remaining, r)
			}
		}
		if len(remaining) == len(stored.RecordIDs) {
			continue
		}
		stored.RecordIDs = remaining

		if len(stored.RecordIDs) == 0 {
			pipe := s.client.TxPipeline()
			pipe.Del(ctx, timerKey(timerID))
			pipe.ZRem(ctx, zsetKey, timerID)
			if _, err := pipe.Exec(ctx); err != nil {
				return fmt.Errorf("drop empty timer %s: %w", timerID, err)
			}
			continue
		}

		updated, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("marshal timer %s: %w", timerID, err)
		}
		if err := s.client.Set(ctx, timerKey(timerID), updated, 0).Err(); err != nil {
			return fmt.Errorf("update timer %s: %w", timerID, err)
		}
	}
	return nil
}

func decodeTimer(body []byte) (*models.ResumeTimer, error) {
	var stored storedTimer
	if err := json.Unmarshal(body, &stored); err != nil {
		return nil, fmt.Errorf("decode timer: %w", err)
	}

	timerID, err := id.ParseTimerID(stored.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt timer id %q: %w", stored.ID, err)
	}
	records := make([]id.RecordID, 0, len(stored.RecordIDs))
	for _, raw := range stored.RecordIDs {
		recordID, err := id.ParseRecordID(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt record id %q: %w", raw, err)
		}
		records = append(records, recordID)
	}

	return &models.ResumeTimer{
		ID:        timerID,
		RecordIDs: records,
		FireAt:    stored.FireAt,
		CreatedAt: stored.CreatedAt,
	}, nil
}
