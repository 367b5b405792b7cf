package question

import (
	"errors"
	"testing"

	"sense-hacker-service/internal/domain"
)

func TestValidateAcceptsWellFormedPayload(t *testing.T) {
	raw := []byte(`{
		"question": "What is phishing?",
		"options": ["A scam", "A sport", "A language", "A login method"],
		"answer": "A scam",
		"explanation": "Phishing tricks users into revealing information."
	}`)

	q, err := Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if q.Text != "What is phishing?" {
		t.Fatalf("unexpected text %q", q.Text)
	}
	if len(q.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(q.Options))
	}
	if q.Answer != "A scam" {
		t.Fatalf("unexpected answer %q", q.Answer)
	}
}

func TestValidateAcceptsTextField(t *testing.T) {
	raw := []byte(`{
		"text": "Pick one",
		"options": ["a", "b", "c", "d"],
		"answer": "b",
		"explanation": ""
	}`)

	q, err := Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if q.Text != "Pick one" {
		t.Fatalf("unexpected text %q", q.Text)
	}
}

func TestValidateTruncatesExtraOptions(t *testing.T) {
	raw := []byte(`{
		"question": "Pick one",
		"options": ["a", "b", "c", "d", "e", "f"],
		"answer": "c",
		"explanation": "x"
	}`)

	q, err := Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(q.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(q.Options))
	}
	// first-occurrence order preserved
	for i, want := range []string{"a", "b", "c", "d"} {
		if q.Options[i] != want {
			t.Fatalf("option %d: got %q want %q", i, q.Options[i], want)
		}
	}
}

func TestValidateCollapsesDuplicatesBeforeCounting(t *testing.T) {
	raw := []byte(`{
		"question": "Pick one",
		"options": ["a", "a ", " a", "b", "c"],
		"answer": "a",
		"explanation": "x"
	}`)

	_, err := Validate(raw)
	if !errors.Is(err, domain.ErrInsufficientOptions) {
		t.Fatalf("expected ErrInsufficientOptions, got %v", err)
	}
}

func TestValidateRejectsAnswerOutsideOptions(t *testing.T) {
	raw := []byte(`{
		"question": "Pick one",
		"options": ["a", "b", "c", "d"],
		"answer": "e",
		"explanation": "x"
	}`)

	_, err := Validate(raw)
	if !errors.Is(err, domain.ErrAnswerNotInOptions) {
		t.Fatalf("expected ErrAnswerNotInOptions, got %v", err)
	}
}

func TestValidateRejectsAnswerDroppedByTruncation(t *testing.T) {
	raw := []byte(`{
		"question": "Pick one",
		"options": ["a", "b", "c", "d", "e"],
		"answer": "e",
		"explanation": "x"
	}`)

	_, err := Validate(raw)
	if !errors.Is(err, domain.ErrAnswerNotInOptions) {
		t.Fatalf("expected ErrAnswerNotInOptions, got %v", err)
	}
}

func TestValidateAnswerMatchIsCaseSensitive(t *testing.T) {
	raw := []byte(`{
		"question": "Pick one",
		"options": ["Alpha", "b", "c", "d"],
		"answer": "alpha",
		"explanation": "x"
	}`)

	_, err := Validate(raw)
	if !errors.Is(err, domain.ErrAnswerNotInOptions) {
		t.Fatalf("expected ErrAnswerNotInOptions, got %v", err)
	}
}

func TestValidateRejectsProse(t *testing.T) {
	_, err := Validate([]byte("Sure! Here is your question about phishing..."))
	if !errors.Is(err, domain.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestValidateRejectsMissingText(t *testing.T) {
	raw := []byte(`{"options": ["a", "b", "c", "d"], "answer": "a"}`)
	_, err := Validate(raw)
	if !errors.Is(err, domain.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}
