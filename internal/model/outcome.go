package model

// OutcomeStatus classifies what happened to a single log during decoding.
type OutcomeStatus string

const (
	StatusDecoded OutcomeStatus = "decoded"
	StatusSkipped OutcomeStatus = "skipped"
	StatusErrored OutcomeStatus = "errored"
)

// DecodeOutcome is the per-log decode result. Exactly one of Event or Err is
// set for decoded/errored outcomes; skipped carries neither.
type DecodeOutcome struct {
	Status OutcomeStatus
	Event  *TypedEvent
	Err    string
}

// Decoded wraps a successfully decoded event.
func Decoded(event *TypedEvent) DecodeOutcome {
	return DecodeOutcome{Status: StatusDecoded, Event: event}
}

// Skipped marks a log outside the supported shape table.
func Skipped() DecodeOutcome {
	return DecodeOutcome{Status: StatusSkipped}
}

// Errored marks a malformed log that could not be decoded.
func Errored(err error) DecodeOutcome {
	return DecodeOutcome{Status: StatusErrored, Err: err.Error()}
}
