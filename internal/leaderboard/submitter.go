package leaderboard

import (
	"context"
	"log"
	"sync"
	"time"

	"sense-hacker-service/internal/domain"
)

const submitTimeout = 5 * time.Second

// AsyncSubmitter decouples score writes from gameplay: Submit never blocks,
// a worker goroutine drains the queue, and write failures are logged rather
// than surfaced. A slow or dead store costs entries, not answers.
type AsyncSubmitter struct {
	store Store
	queue chan domain.LeaderboardEntry

	closeOnce sync.Once
	done      chan struct{}
}

// NewAsyncSubmitter starts the submitter's worker with the given queue depth.
func NewAsyncSubmitter(store Store, buffer int) *AsyncSubmitter {
	if buffer <= 0 {
		buffer = 16
	}
	s := &AsyncSubmitter{
		store: store,
		queue: make(chan domain.LeaderboardEntry, buffer),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

// Submit enqueues one entry. If the queue is full the entry is dropped with a
// log line; gameplay is never stalled.
func (s *AsyncSubmitter) Submit(entry domain.LeaderboardEntry) {
	select {
	case s.queue <- entry:
	default:
		log.Printf("leaderboard submit queue full, dropping entry for %s", entry.PlayerID)
	}
}

// Close stops accepting entries and waits for the queue to drain.
func (s *AsyncSubmitter) Close() {
	s.closeOnce.Do(func() {
		close(s.queue)
	})
	<-s.done
}

func (s *AsyncSubmitter) run() {
	defer close(s.done)
	for entry := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		if err := s.store.Append(ctx, entry); err != nil {
			log.Printf("leaderboard write failed for %s: %v", entry.PlayerID, err)
		}
		cancel()
	}
}
