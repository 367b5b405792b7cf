package question

import (
	"encoding/json"
	"fmt"
	"strings"

	"sense-hacker-service/internal/domain"
)

// rawPayload mirrors the shape the generator is asked to produce.
// Some responses use "text" instead of "question" for the prompt field.
type rawPayload struct {
	Question    string   `json:"question"`
	Text        string   `json:"text"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// Validate normalizes a raw question payload into a canonical Question.
// Duplicate options are collapsed keeping first-occurrence order, extra
// options beyond four are dropped, and the answer must match one of the
// retained options exactly.
func Validate(raw []byte) (domain.Question, error) {
	var payload rawPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.Question{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	text := strings.TrimSpace(payload.Question)
	if text == "" {
		text = strings.TrimSpace(payload.Text)
	}
	if text == "" {
		return domain.Question{}, fmt.Errorf("%w: missing question text", domain.ErrMalformedPayload)
	}

	options := dedupeOptions(payload.Options)
	if len(options) < domain.OptionCount {
		return domain.Question{}, fmt.Errorf("%w: got %d", domain.ErrInsufficientOptions, len(options))
	}
	options = options[:domain.OptionCount]

	answer := strings.TrimSpace(payload.Answer)
	if !containsOption(options, answer) {
		return domain.Question{}, fmt.Errorf("%w: %q", domain.ErrAnswerNotInOptions, answer)
	}

	return domain.Question{
		Text:        text,
		Options:     options,
		Answer:      answer,
		Explanation: strings.TrimSpace(payload.Explanation),
	}, nil
}

func dedupeOptions(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	options := make([]string, 0, len(raw))
	for _, opt := range raw {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if _, ok := seen[opt]; ok {
			continue
		}
		seen[opt] = struct{}{}
		options = append(options, opt)
	}
	return options
}

func containsOption(options []string, answer string) bool {
	for _, opt := range options {
		if opt == answer {
			return true
		}
	}
	return false
}
