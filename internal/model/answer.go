package model

import "time"

// Answer is the live, in-session response to one item
type Answer struct {
	ItemID     string    `json:"itemId"`
	Score      int       `json:"score,omitempty"` // 0 means no score yet
	Note       string    `json:"note,omitempty"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// IsAnswered reports whether the answer carries a score. A note alone does not count.
func (a *Answer) IsAnswered() bool {
	return a != nil && a.Score >= ScoreMin && a.Score <= ScoreMax
}

// AnswerRecord is the persisted shape of an answer, written once per commit
type AnswerRecord struct {
	ID         string    `json:"id" bson:"_id"`
	SessionID  string    `json:"sessionId" bson:"sessionId"`
	UserID     string    `json:"userId" bson:"userId"`
	Level      Level     `json:"level" bson:"level"`
	ItemID     string    `json:"itemId" bson:"itemId"`
	Score      int       `json:"score,omitempty" bson:"score,omitempty"`
	Note       string    `json:"note,omitempty" bson:"note,omitempty"`
	AnsweredAt time.Time `json:"answeredAt" bson:"answeredAt"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// SessionSummary is one entry of a user's committed diagnostic history
type SessionSummary struct {
	SessionID   string    `json:"sessionId" bson:"_id"`
	Level       Level     `json:"level" bson:"level"`
	AnswerCount int       `json:"answerCount" bson:"answerCount"`
	CommittedAt time.Time `json:"committedAt" bson:"committedAt"`
}
