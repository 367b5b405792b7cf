package redis

import (
	"context"

	"sense-hacker-service/internal/domain"
	"sense-hacker-service/internal/leaderboard"
)

// InvalidatingStore wraps a score log so each successful append drops the
// cached ranked view, keeping reads fresh without coupling writers to readers.
type InvalidatingStore struct {
	store leaderboard.Store
	view  *RankedView
}

func NewInvalidatingStore(store leaderboard.Store, view *RankedView) *InvalidatingStore {
	return &InvalidatingStore{store: store, view: view}
}

func (s *InvalidatingStore) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	if err := s.store.Append(ctx, entry); err != nil {
		return err
	}
	s.view.Invalidate(ctx)
	return nil
}

func (s *InvalidatingStore) List(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	return s.store.List(ctx)
}
