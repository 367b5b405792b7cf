package domain

import "time"

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// Question is a validated multiple-choice question. Once built by the
// validator it is never mutated.
type Question struct {
	Text        string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// Difficulty labels the question tier requested from the generator.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// DifficultyForRound maps a battle round to a difficulty tier.
// Round 1 is beginner, round 2 intermediate, everything after advanced.
func DifficultyForRound(round int) Difficulty {
	switch {
	case round <= 1:
		return DifficultyBeginner
	case round == 2:
		return DifficultyIntermediate
	default:
		return DifficultyAdvanced
	}
}

// Phase is the battle session phase.
type Phase string

const (
	PhaseAwaitingQuestion Phase = "awaiting_question"
	PhaseAwaitingAnswer   Phase = "awaiting_answer"
	PhaseRoundComplete    Phase = "round_complete"
	PhaseGameOver         Phase = "game_over"
)

// Outcome is the terminal result of a battle.
type Outcome string

const (
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

// LeaderboardEntry is one append-only score submission.
type LeaderboardEntry struct {
	ID          string    `json:"id,omitempty"`
	PlayerID    string    `json:"playerId"`
	DisplayName string    `json:"displayName"`
	AvatarRef   string    `json:"avatarRef"`
	Score       int       `json:"score"`
	Round       int       `json:"round"`
	SubmittedAt time.Time `json:"submittedAt"`
}
