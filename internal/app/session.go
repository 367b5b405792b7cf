package app

import (
	"sync"
	"time"

	"sense-hacker-service/internal/domain"
)

// Rules are the configurable battle constants.
type Rules struct {
	MaxHealth         int
	QuestionsPerRound int
	PointsPerCorrect  int
}

// DefaultRules returns the standard battle configuration.
func DefaultRules() Rules {
	return Rules{MaxHealth: 5, QuestionsPerRound: 5, PointsPerCorrect: 10}
}

func (r Rules) normalized() Rules {
	if r.MaxHealth <= 0 {
		r.MaxHealth = 5
	}
	if r.QuestionsPerRound <= 0 {
		r.QuestionsPerRound = 5
	}
	if r.PointsPerCorrect <= 0 {
		r.PointsPerCorrect = 10
	}
	return r
}

// QuestionView is the question as shown to the player; the answer and
// explanation are withheld until the question has been answered.
type QuestionView struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
}

// Snapshot is a read-only view of the session for rendering.
type Snapshot struct {
	Phase             domain.Phase   `json:"phase"`
	Round             int            `json:"round"`
	QuestionIndex     int            `json:"questionIndex"`
	QuestionsPerRound int            `json:"questionsPerRound"`
	UserHealth        int            `json:"userHealth"`
	HackerHealth      int            `json:"hackerHealth"`
	MaxHealth         int            `json:"maxHealth"`
	Score             int            `json:"score"`
	Question          *QuestionView  `json:"currentQuestion,omitempty"`
	Outcome           domain.Outcome `json:"outcome,omitempty"`
}

// AnswerResult is the outcome of one answer submission.
type AnswerResult struct {
	Choice       string         `json:"choice"`
	Correct      bool           `json:"correct"`
	Answer       string         `json:"answer"`
	Explanation  string         `json:"explanation"`
	Score        int            `json:"score"`
	UserHealth   int            `json:"userHealth"`
	HackerHealth int            `json:"hackerHealth"`
	GameOver     bool           `json:"gameOver"`
	Outcome      domain.Outcome `json:"outcome,omitempty"`
}

// FetchTicket is handed out by BeginQuestionFetch; it carries the state the
// duplicate-retry loop needs plus an epoch so results of superseded fetches
// are discarded instead of applied.
type FetchTicket struct {
	Epoch int
	Round int
	Asked []string
}

// Session owns the battle state for one player's play-through. All state
// transitions go through its methods; invalid-phase calls return
// domain.ErrInvalidTransition and change nothing.
type Session struct {
	playerID    string
	displayName string
	avatarRef   string
	rules       Rules
	now         func() time.Time

	mu            sync.Mutex
	phase         domain.Phase
	round         int
	questionIndex int
	userHealth    int
	hackerHealth  int
	score         int
	asked         []string
	current       *domain.Question
	answered      bool
	lastResult    *AnswerResult
	fetching      bool
	epoch         int
	outcome       domain.Outcome
}

// NewSession creates a session at round 1 awaiting its first question.
func NewSession(playerID, displayName, avatarRef string, rules Rules) *Session {
	return NewSessionWithClock(playerID, displayName, avatarRef, rules, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(playerID, displayName, avatarRef string, rules Rules, now func() time.Time) *Session {
	s := &Session{
		playerID:    playerID,
		displayName: displayName,
		avatarRef:   avatarRef,
		rules:       rules.normalized(),
		now:         now,
		round:       1,
	}
	s.resetRoundLocked()
	return s
}

// PlayerID returns the owning player's id.
func (s *Session) PlayerID() string { return s.playerID }

// resetRoundLocked resets per-round state; cumulative score and round number
// are left alone.
func (s *Session) resetRoundLocked() {
	s.questionIndex = 1
	s.userHealth = s.rules.MaxHealth
	s.hackerHealth = s.rules.MaxHealth
	s.asked = nil
	s.current = nil
	s.answered = false
	s.lastResult = nil
	s.outcome = ""
	s.fetching = false
	s.epoch++
	s.phase = domain.PhaseAwaitingQuestion
}

// BeginQuestionFetch marks the session as loading a question and returns the
// ticket the caller needs to fetch and resolve. Valid only while awaiting a
// question with no fetch in flight.
func (s *Session) BeginQuestionFetch() (FetchTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseAwaitingQuestion || s.fetching {
		return FetchTicket{}, domain.ErrInvalidTransition
	}
	s.fetching = true
	asked := make([]string, len(s.asked))
	copy(asked, s.asked)
	return FetchTicket{Epoch: s.epoch, Round: s.round, Asked: asked}, nil
}

// ResolveQuestion applies a fetched question. The asked slice replaces the
// session's exclusion memory, letting the caller's retry policy clear it when
// the pool is exhausted. Returns false when the fetch was superseded by a
// restart or round change; the question is then discarded.
func (s *Session) ResolveQuestion(ticket FetchTicket, q domain.Question, asked []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket.Epoch != s.epoch || !s.fetching || s.phase != domain.PhaseAwaitingQuestion {
		return false
	}
	s.fetching = false
	s.current = &q
	s.answered = false
	s.lastResult = nil
	s.asked = append(asked, q.Text)
	s.phase = domain.PhaseAwaitingAnswer
	return true
}

// AbortQuestionFetch releases the loading state after a fetch that could not
// be resolved.
func (s *Session) AbortQuestionFetch(ticket FetchTicket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket.Epoch == s.epoch {
		s.fetching = false
	}
}

// SubmitAnswer grades a choice against the current question. Correct answers
// cost the hacker a health point and award points; wrong answers cost the
// player. Health never goes below zero. A second submission for the same
// question returns the first result unchanged.
func (s *Session) SubmitAnswer(choice string) (AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.answered && s.lastResult != nil {
		// Already graded; repeat submissions are no-ops.
		return *s.lastResult, nil
	}
	if s.phase != domain.PhaseAwaitingAnswer || s.current == nil {
		return AnswerResult{}, domain.ErrInvalidTransition
	}

	correct := choice == s.current.Answer
	if correct {
		if s.hackerHealth > 0 {
			s.hackerHealth--
		}
		s.score += s.rules.PointsPerCorrect
	} else if s.userHealth > 0 {
		s.userHealth--
	}
	s.answered = true

	// User defeat is checked first: a simultaneous double knockout counts as a loss.
	if s.userHealth == 0 {
		s.phase = domain.PhaseGameOver
		s.outcome = domain.OutcomeLost
	} else if s.hackerHealth == 0 {
		s.phase = domain.PhaseGameOver
		s.outcome = domain.OutcomeWon
	}

	result := AnswerResult{
		Choice:       choice,
		Correct:      correct,
		Answer:       s.current.Answer,
		Explanation:  s.current.Explanation,
		Score:        s.score,
		UserHealth:   s.userHealth,
		HackerHealth: s.hackerHealth,
		GameOver:     s.phase == domain.PhaseGameOver,
		Outcome:      s.outcome,
	}
	s.lastResult = &result
	return result, nil
}

// Advance moves past an answered question: to the next question slot, or to
// round-complete when the round's questions are spent.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseAwaitingAnswer || !s.answered {
		return domain.ErrInvalidTransition
	}
	s.current = nil
	s.answered = false
	s.lastResult = nil
	if s.questionIndex < s.rules.QuestionsPerRound {
		s.questionIndex++
		s.phase = domain.PhaseAwaitingQuestion
	} else {
		s.phase = domain.PhaseRoundComplete
	}
	return nil
}

// NextRound starts the next, harder round. Health and exclusions reset;
// cumulative score carries over.
func (s *Session) NextRound() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseRoundComplete {
		return domain.ErrInvalidTransition
	}
	s.round++
	s.resetRoundLocked()
	return nil
}

// Restart resets the battle to round 1 with a zero score, from any phase.
// Any in-flight question fetch is invalidated.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round = 1
	s.score = 0
	s.resetRoundLocked()
}

// Entry builds the leaderboard submission for the session's current totals.
func (s *Session) Entry() domain.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.LeaderboardEntry{
		PlayerID:    s.playerID,
		DisplayName: s.displayName,
		AvatarRef:   s.avatarRef,
		Score:       s.score,
		Round:       s.round,
		SubmittedAt: s.now(),
	}
}

// Snapshot returns the current renderable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Phase:             s.phase,
		Round:             s.round,
		QuestionIndex:     s.questionIndex,
		QuestionsPerRound: s.rules.QuestionsPerRound,
		UserHealth:        s.userHealth,
		HackerHealth:      s.hackerHealth,
		MaxHealth:         s.rules.MaxHealth,
		Score:             s.score,
		Outcome:           s.outcome,
	}
	if s.current != nil {
		options := make([]string, len(s.current.Options))
		copy(options, s.current.Options)
		snap.Question = &QuestionView{Text: s.current.Text, Options: options}
	}
	return snap
}
