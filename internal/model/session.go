package model

import "time"

type SessionStatus string

const (
	SessionOpen      SessionStatus = "open"
	SessionCommitted SessionStatus = "committed"
)

// DiagnosticSession is the stored state of one diagnostic run
type DiagnosticSession struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId"`
	Level       Level              `json:"level"`
	Status      SessionStatus      `json:"status"`
	TotalCount  int                `json:"totalCount"`
	Answers     map[string]*Answer `json:"answers"`
	StartedAt   time.Time          `json:"startedAt"`
	CommittedAt *time.Time         `json:"committedAt,omitempty"`
}

// Progress is the derived completion state of a session
type Progress struct {
	AnsweredCount   int `json:"answeredCount"`
	TotalCount      int `json:"totalCount"`
	ProgressPercent int `json:"progressPercent"`
}

// SessionView is what the API returns for a session
type SessionView struct {
	*DiagnosticSession
	Progress Progress `json:"progress"`
}
