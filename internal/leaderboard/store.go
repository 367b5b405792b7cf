package leaderboard

import (
	"context"

	"sense-hacker-service/internal/domain"
)

// Store is the append-only score log. Ordering and deduplication are the
// aggregator's job, not the store's.
type Store interface {
	Append(ctx context.Context, entry domain.LeaderboardEntry) error
	List(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// StoreView ranks directly off the store on every read. Wrap it with a
// caching view (see infra/redis) when reads get hot.
type StoreView struct {
	store Store
	limit int
}

// NewStoreView builds a view returning at most limit entries.
func NewStoreView(store Store, limit int) *StoreView {
	return &StoreView{store: store, limit: limit}
}

// Top returns the ranked view of the full submission history.
func (v *StoreView) Top(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	entries, err := v.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(entries, v.limit), nil
}
