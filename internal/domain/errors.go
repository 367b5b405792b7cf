package domain

import "errors"

var (
	// ErrMalformedPayload is returned when a raw question payload cannot be parsed.
	ErrMalformedPayload = errors.New("malformed question payload")
	// ErrInsufficientOptions is returned when fewer than four unique options remain.
	ErrInsufficientOptions = errors.New("not enough unique options")
	// ErrAnswerNotInOptions is returned when the answer matches none of the retained options.
	ErrAnswerNotInOptions = errors.New("answer not among options")
	// ErrInvalidTransition is returned when a session operation is invoked outside its valid phase.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrSessionNotFound is returned when a battle session has not been started.
	ErrSessionNotFound = errors.New("battle session not found")
)
