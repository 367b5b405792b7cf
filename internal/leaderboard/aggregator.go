// Package leaderboard turns the append-only score log into a ranked view and
// carries submissions to the store without touching the gameplay path.
package leaderboard

import (
	"sort"

	"sense-hacker-service/internal/domain"
)

// Rank reduces an arbitrary-order submission log to the ranked top-N view:
// one entry per player (their best score, ties broken by the more recent
// submission), sorted by score descending with earlier submissions ranking
// higher on equal scores, truncated to limit. Pure function over its input.
func Rank(entries []domain.LeaderboardEntry, limit int) []domain.LeaderboardEntry {
	best := make(map[string]domain.LeaderboardEntry, len(entries))
	for _, entry := range entries {
		current, ok := best[entry.PlayerID]
		if !ok || entry.Score > current.Score ||
			(entry.Score == current.Score && entry.SubmittedAt.After(current.SubmittedAt)) {
			best[entry.PlayerID] = entry
		}
	}

	ranked := make([]domain.LeaderboardEntry, 0, len(best))
	for _, entry := range best {
		ranked = append(ranked, entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].SubmittedAt.Equal(ranked[j].SubmittedAt) {
			return ranked[i].SubmittedAt.Before(ranked[j].SubmittedAt)
		}
		return ranked[i].PlayerID < ranked[j].PlayerID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
