package diagnostic

import (
	"math"
	"sort"
	"time"

	"qualiobra/internal/model"
)

// Session tracks the answers of one diagnostic run. It is owned by a single
// user and is not safe for concurrent use.
type Session struct {
	state *model.DiagnosticSession
	now   func() time.Time
}

// NewSession starts an open session assessing totalCount items.
func NewSession(id, userID string, level model.Level, totalCount int) *Session {
	if totalCount < 0 {
		totalCount = 0
	}
	return &Session{
		state: &model.DiagnosticSession{
			ID:         id,
			UserID:     userID,
			Level:      level,
			Status:     model.SessionOpen,
			TotalCount: totalCount,
			Answers:    make(map[string]*model.Answer),
			StartedAt:  time.Now(),
		},
		now: time.Now,
	}
}

// FromModel wraps stored session state.
func FromModel(m *model.DiagnosticSession) *Session {
	if m.Answers == nil {
		m.Answers = make(map[string]*model.Answer)
	}
	if m.Status == "" {
		m.Status = model.SessionOpen
	}
	return &Session{state: m, now: time.Now}
}

// Model returns the underlying state for storage.
func (s *Session) Model() *model.DiagnosticSession { return s.state }

func (s *Session) ID() string         { return s.state.ID }
func (s *Session) UserID() string     { return s.state.UserID }
func (s *Session) Level() model.Level { return s.state.Level }

// Closed reports whether the session was already committed.
func (s *Session) Closed() bool { return s.state.Status == model.SessionCommitted }

// RecordScore sets the score for itemID, keeping any note already there.
// It does not check the item's scoring kind.
func (s *Session) RecordScore(itemID string, score int) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	if score < model.ScoreMin || score > model.ScoreMax {
		return &ValidationError{Field: "score", Value: score}
	}
	a := s.answer(itemID)
	a.Score = score
	a.AnsweredAt = s.now()
	return nil
}

// RecordNote sets the note for itemID, keeping any score already there.
// A note alone never marks the item as answered.
func (s *Session) RecordNote(itemID, note string) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	a := s.answer(itemID)
	a.Note = note
	a.AnsweredAt = s.now()
	return nil
}

func (s *Session) answer(itemID string) *model.Answer {
	a, ok := s.state.Answers[itemID]
	if !ok {
		a = &model.Answer{ItemID: itemID}
		s.state.Answers[itemID] = a
	}
	return a
}

// Answer returns the answer for itemID, if any.
func (s *Session) Answer(itemID string) (model.Answer, bool) {
	a, ok := s.state.Answers[itemID]
	if !ok {
		return model.Answer{}, false
	}
	return *a, true
}

// Answers returns a copy of every answer ordered by item id.
func (s *Session) Answers() []model.Answer {
	out := make([]model.Answer, 0, len(s.state.Answers))
	for _, a := range s.state.Answers {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// AnsweredCount is the number of items carrying a score.
func (s *Session) AnsweredCount() int {
	n := 0
	for _, a := range s.state.Answers {
		if a.IsAnswered() {
			n++
		}
	}
	return n
}

func (s *Session) TotalCount() int { return s.state.TotalCount }

// ProgressPercent is round(100 * answered / total), or 0 for an empty session.
func (s *Session) ProgressPercent() int {
	return percent(s.AnsweredCount(), s.state.TotalCount)
}

func (s *Session) Progress() model.Progress {
	answered := s.AnsweredCount()
	return model.Progress{
		AnsweredCount:   answered,
		TotalCount:      s.state.TotalCount,
		ProgressPercent: percent(answered, s.state.TotalCount),
	}
}

// MarkCommitted closes the session after its answers were persisted.
func (s *Session) MarkCommitted(at time.Time) {
	s.state.Status = model.SessionCommitted
	s.state.CommittedAt = &at
}

// View bundles the session with its derived progress.
func (s *Session) View() *model.SessionView {
	return &model.SessionView{DiagnosticSession: s.state, Progress: s.Progress()}
}

func percent(n, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(total)))
}
