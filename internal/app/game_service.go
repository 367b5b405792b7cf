package app

import (
	"context"
	"log"

	"sense-hacker-service/internal/domain"
)

// maxFetchAttempts bounds the duplicate-question retry loop; after this many
// repeats the last question is accepted as-is.
const maxFetchAttempts = 4

// SessionRepository abstracts how battle sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(playerID, displayName, avatarRef string) *Session
	Get(playerID string) (*Session, bool)
	Delete(playerID string)
}

// QuestionSource supplies questions; it never fails. PoolSize reports the
// distinct fallback pool size, which bounds the duplicate-retry policy.
type QuestionSource interface {
	Fetch(ctx context.Context, level domain.Difficulty, excluded []string) domain.Question
	PoolSize() int
}

// LeaderboardViewer reads the ranked top-N view.
type LeaderboardViewer interface {
	Top(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// ScoreSubmitter accepts score submissions fire-and-forget; failures must
// never reach gameplay.
type ScoreSubmitter interface {
	Submit(entry domain.LeaderboardEntry)
}

// GameService contains the battle use cases: it drives the session state
// machine, pulls questions from the source, and hands terminal scores to the
// leaderboard.
type GameService struct {
	sessions SessionRepository
	source   QuestionSource
	boards   LeaderboardViewer
	scores   ScoreSubmitter
}

// NewGameService wires the service. boards and scores may be nil when no
// leaderboard backend is configured; gameplay is unaffected.
func NewGameService(sessions SessionRepository, source QuestionSource, boards LeaderboardViewer, scores ScoreSubmitter) *GameService {
	return &GameService{sessions: sessions, source: source, boards: boards, scores: scores}
}

// Start begins (or restarts) a battle for the player and loads the first question.
func (s *GameService) Start(ctx context.Context, playerID, displayName, avatarRef string) (Snapshot, error) {
	session := s.sessions.GetOrCreate(playerID, displayName, avatarRef)
	session.Restart()
	if err := s.loadQuestion(ctx, session); err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// Answer grades the player's choice. On game over the final score is
// submitted to the leaderboard asynchronously.
func (s *GameService) Answer(ctx context.Context, playerID, choice string) (AnswerResult, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return AnswerResult{}, domain.ErrSessionNotFound
	}
	result, err := session.SubmitAnswer(choice)
	if err != nil {
		return AnswerResult{}, err
	}
	if result.GameOver && s.scores != nil {
		s.scores.Submit(session.Entry())
	}
	return result, nil
}

// Next advances past an answered question and, unless the round just ended,
// loads the next question.
func (s *GameService) Next(ctx context.Context, playerID string) (Snapshot, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	if err := session.Advance(); err != nil {
		return Snapshot{}, err
	}
	if session.Snapshot().Phase == domain.PhaseAwaitingQuestion {
		if err := s.loadQuestion(ctx, session); err != nil {
			return Snapshot{}, err
		}
	}
	return session.Snapshot(), nil
}

// NextRound starts the next round and loads its first question.
func (s *GameService) NextRound(ctx context.Context, playerID string) (Snapshot, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	if err := session.NextRound(); err != nil {
		return Snapshot{}, err
	}
	if err := s.loadQuestion(ctx, session); err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// Restart resets the battle from any phase and loads a fresh first question.
func (s *GameService) Restart(ctx context.Context, playerID string) (Snapshot, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	session.Restart()
	if err := s.loadQuestion(ctx, session); err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// Leave discards the player's session.
func (s *GameService) Leave(playerID string) {
	s.sessions.Delete(playerID)
}

// Leaderboard returns the ranked view. Read failures degrade to an empty
// view; they never surface as gameplay errors.
func (s *GameService) Leaderboard(ctx context.Context) []domain.LeaderboardEntry {
	if s.boards == nil {
		return nil
	}
	entries, err := s.boards.Top(ctx)
	if err != nil {
		log.Printf("leaderboard read failed: %v", err)
		return nil
	}
	return entries
}

// loadQuestion fetches a question for the session's current round, retrying
// on duplicates. When the exclusion set covers the whole distinct pool it is
// cleared before the next attempt so the loop cannot spin forever.
func (s *GameService) loadQuestion(ctx context.Context, session *Session) error {
	ticket, err := session.BeginQuestionFetch()
	if err != nil {
		return err
	}

	asked := ticket.Asked
	level := domain.DifficultyForRound(ticket.Round)
	var q domain.Question
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		q = s.source.Fetch(ctx, level, asked)
		if !containsText(asked, q.Text) {
			break
		}
		if len(asked) >= s.source.PoolSize() {
			asked = nil
		}
	}

	if !session.ResolveQuestion(ticket, q, asked) {
		// Session was restarted or superseded while fetching; drop the result.
		log.Printf("discarding question fetched for superseded session %s", session.PlayerID())
	}
	return nil
}

func containsText(asked []string, text string) bool {
	for _, t := range asked {
		if t == text {
			return true
		}
	}
	return false
}
