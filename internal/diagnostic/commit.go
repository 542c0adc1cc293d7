package diagnostic

import (
	"context"
	"time"

	"github.com/google/uuid"

	"qualiobra/internal/model"
)

// AnswerWriter persists a batch of answer records in a single write.
type AnswerWriter interface {
	InsertAnswers(ctx context.Context, records []model.AnswerRecord) error
}

// Records serializes every answer of the session, each with a fresh id.
func Records(s *Session, userID string, now time.Time) []model.AnswerRecord {
	answers := s.Answers()
	records := make([]model.AnswerRecord, 0, len(answers))
	for _, a := range answers {
		records = append(records, model.AnswerRecord{
			ID:         uuid.NewString(),
			SessionID:  s.ID(),
			UserID:     userID,
			Level:      s.Level(),
			ItemID:     a.ItemID,
			Score:      a.Score,
			Note:       a.Note,
			AnsweredAt: a.AnsweredAt,
			CreatedAt:  now,
		})
	}
	return records
}

// Commit writes all answers of the session as one batch. It never mutates the
// session: on failure the answers stay in place for another attempt, and on
// success the caller decides when to mark the session committed. A session
// with no scored item is rejected before anything is written.
func Commit(ctx context.Context, s *Session, userID string, w AnswerWriter, now time.Time) ([]model.AnswerRecord, error) {
	if s.Closed() {
		return nil, ErrSessionClosed
	}
	if userID == "" {
		return nil, &PersistenceError{SessionID: s.ID(), Err: ErrNoIdentity}
	}
	if s.AnsweredCount() == 0 {
		return nil, &ValidationError{Field: "answers", Value: 0, Reason: "score at least one item before committing"}
	}
	records := Records(s, userID, now)
	if err := w.InsertAnswers(ctx, records); err != nil {
		return nil, &PersistenceError{SessionID: s.ID(), Err: err}
	}
	return records, nil
}

// SessionFromRecords rebuilds a committed session from its persisted records.
func SessionFromRecords(sessionID, userID string, level model.Level, totalCount int, records []model.AnswerRecord) *Session {
	s := NewSession(sessionID, userID, level, totalCount)
	var committed time.Time
	for _, r := range records {
		s.state.Answers[r.ItemID] = &model.Answer{
			ItemID:     r.ItemID,
			Score:      r.Score,
			Note:       r.Note,
			AnsweredAt: r.AnsweredAt,
		}
		if r.CreatedAt.After(committed) {
			committed = r.CreatedAt
		}
	}
	s.MarkCommitted(committed)
	return s
}
