package diagnostic

import (
	"errors"
	"fmt"
)

var (
	ErrNoIdentity    = errors.New("no authenticated user identity")
	ErrSessionClosed = errors.New("diagnostic session already committed")
)

// ValidationError indicates malformed input to a session operation.
type ValidationError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ValidationError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "must be between 1 and 5"
	}
	return fmt.Sprintf("invalid %s %d: %s", e.Field, e.Value, reason)
}

// PersistenceError indicates a commit could not be written to the answer store.
// The session it came from is left untouched and may be committed again.
type PersistenceError struct {
	SessionID string
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("commit session %s: %v", e.SessionID, e.Err)
	}
	return fmt.Sprintf("commit session %s failed", e.SessionID)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
