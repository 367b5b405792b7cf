package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"sense-hacker-service/internal/domain"
	"sense-hacker-service/internal/leaderboard"
)

const rankedViewKey = "leaderboard:top"

// RankedView caches the ranked leaderboard in Redis and falls back to
// ranking the full store history on cache miss. Concurrent misses are
// coalesced through singleflight; the TTL carries jitter so instances do not
// refill in lockstep.
type RankedView struct {
	client *redis.Client
	store  leaderboard.Store
	limit  int
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewRankedView(client *redis.Client, store leaderboard.Store, limit int, ttl time.Duration) *RankedView {
	return &RankedView{
		client: client,
		store:  store,
		limit:  limit,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (v *RankedView) Top(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	if cached, err := v.client.Get(ctx, rankedViewKey).Bytes(); err == nil {
		var entries []domain.LeaderboardEntry
		if err := json.Unmarshal(cached, &entries); err == nil {
			return entries, nil
		}
	}

	result, err, _ := v.sf.Do(rankedViewKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, err := v.client.Get(ctx, rankedViewKey).Bytes(); err == nil {
			var entries []domain.LeaderboardEntry
			if err := json.Unmarshal(cached, &entries); err == nil {
				return entries, nil
			}
		}

		history, err := v.store.List(ctx)
		if err != nil {
			return nil, err
		}
		ranked := leaderboard.Rank(history, v.limit)

		if payload, err := json.Marshal(ranked); err == nil {
			_ = v.client.Set(ctx, rankedViewKey, payload, v.ttlWithJitter()).Err()
		}
		return ranked, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LeaderboardEntry), nil
}

// Invalidate drops the cached view; called after a submission lands.
func (v *RankedView) Invalidate(ctx context.Context) {
	_ = v.client.Del(ctx, rankedViewKey).Err()
}

func (v *RankedView) ttlWithJitter() time.Duration {
	if v.ttl <= 0 {
		return 0
	}
	jitterMax := int64(v.ttl) / 10
	return v.ttl + time.Duration(v.rnd.Int63n(jitterMax+1))
}
