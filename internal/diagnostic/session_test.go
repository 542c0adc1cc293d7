package diagnostic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qualiobra/internal/model"
)

func TestSession_ProgressPercent(t *testing.T) {
	s := NewSession("s1", "u1", model.LevelB, 5)
	require.NoError(t, s.RecordScore("i1", 5))
	require.NoError(t, s.RecordScore("i2", 1))

	assert.Equal(t, 2, s.AnsweredCount())
	assert.Equal(t, 5, s.TotalCount())
	assert.Equal(t, 40, s.ProgressPercent())
}

func TestSession_ProgressRounds(t *testing.T) {
	s := NewSession("s1", "u1", model.LevelB, 3)
	require.NoError(t, s.RecordScore("i1", 3))
	assert.Equal(t, 33, s.ProgressPercent())
	require.NoError(t, s.RecordScore("i2", 3))
	assert.Equal(t, 67, s.ProgressPercent())
}

func TestSession_EmptyTotalNeverDivides(t *testing.T) {
	s := NewSession("s1", "u1", model.LevelA, 0)
	require.NoError(t, s.RecordScore("i1", 4))
	assert.Equal(t, 0, s.ProgressPercent())
}

func TestSession_RescoreKeepsAnsweredCount(t *testing.T) {
	s := NewSession("s1", "u1", model.LevelB, 4)
	require.NoError(t, s.RecordScore("i1", 2))
	require.NoError(t, s.RecordScore("i1", 4))

	assert.Equal(t, 1, s.AnsweredCount())
	a, ok := s.Answer("i1")
	require.True(t, ok)
	assert.Equal(t, 4, a.Score)
}

func TestSession_NoteAloneIsNotAnswered(t *testing.T) {
	s := NewSession("s1", "u1", model.LevelB, 4)
	require.NoError(t, s.RecordNote("i1", "evidência no manual"))

	assert.Equal(t, 0, s.AnsweredCount())
	assert.Equal(t, 0, s.ProgressPercent())
	a, ok := s.Answer("i1")
	require.True(t, ok)
	assert.Equal(t, 0, a.Score)
	assert.Equal(t, "evidência no manual", a.Note)
}

func TestSession_ScoreAndNoteAreIndependent(t *testing.T) {
	s := NewSession("s1", "u1", model.LevelB, 4)
	require.NoError(t, s.RecordNote("i1", "first"))
	require.NoError(t, s.RecordScore("i1", 3))
	a, _ := s.Answer("i1")
	assert.Equal(t, 3, a.Score)
	assert.Equal(t, "first", a.Note)

	require.NoError(t, s.RecordNote("i1", "second"))
	a, _ = s.Answer("i1")
	assert.Equal(t, 3, a.Score)
	assert.Equal(t, "second", a.Note)
	assert.Equal(t, 1, s.AnsweredCount())
}

func TestSession_RejectsOutOfRangeScore(t *testing.T) {
	s := NewSession("s1", "u1", model.LevelB, 4)

	for _, score := range []int{0, -1, 6} {
		err := s.RecordScore("i1", score)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "score %d", score)
		assert.Equal(t, score, verr.Value)
	}
	assert.Equal(t, 0, s.AnsweredCount())
	_, ok := s.Answer("i1")
	assert.False(t, ok)
}

func TestSession_ClosedRejectsMutation(t *testing.T) {
	s := NewSession("s1", "u1", model.LevelB, 4)
	s.MarkCommitted(time.Now())

	assert.ErrorIs(t, s.RecordScore("i1", 3), ErrSessionClosed)
	assert.ErrorIs(t, s.RecordNote("i1", "x"), ErrSessionClosed)
}

func TestFromModel_RoundTripsState(t *testing.T) {
	s := NewSession("s1", "u1", model.LevelA, 3)
	require.NoError(t, s.RecordScore("i1", 5))

	restored := FromModel(s.Model())
	assert.Equal(t, 1, restored.AnsweredCount())
	assert.Equal(t, 33, restored.ProgressPercent())
	assert.False(t, restored.Closed())

	empty := FromModel(&model.DiagnosticSession{ID: "s2"})
	assert.NoError(t, empty.RecordNote("i1", "ok"))
}

type fakeWriter struct {
	calls   int
	batches [][]model.AnswerRecord
	err     error
}

func (w *fakeWriter) InsertAnswers(ctx context.Context, records []model.AnswerRecord) error {
	w.calls++
	if w.err != nil {
		return w.err
	}
	w.batches = append(w.batches, records)
	return nil
}

func TestCommit_WritesSingleBatch(t *testing.T) {
	s := NewSession("s1", "u1", model.LevelB, 3)
	require.NoError(t, s.RecordScore("i2", 4))
	require.NoError(t, s.RecordScore("i1", 5))
	require.NoError(t, s.RecordNote("i3", "pendente"))
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	w := &fakeWriter{}

	records, err := Commit(context.Background(), s, "u1", w, now)

	require.NoError(t, err)
	require.Equal(t, 1, w.calls)
	require.Len(t, records, 3)
	assert.Equal(t, records, w.batches[0])

	ids := map[string]bool{}
	for i, r := range records {
		assert.NotEmpty(t, r.ID)
		assert.False(t, ids[r.ID], "duplicate record id")
		ids[r.ID] = true
		assert.Equal(t, "s1", r.SessionID)
		assert.Equal(t, "u1", r.UserID)
		assert.Equal(t, model.LevelB, r.Level)
		assert.Equal(t, now, r.CreatedAt)
		assert.Equal(t, []string{"i1", "i2", "i3"}[i], r.ItemID)
	}
	assert.Equal(t, 0, records[2].Score)
	assert.False(t, s.Closed(), "commit must not mutate the session")
}

func TestCommit_NoIdentity(t *testing.T) {
	s := NewSession("s1", "", model.LevelB, 2)
	require.NoError(t, s.RecordScore("i1", 5))
	w := &fakeWriter{}

	_, err := Commit(context.Background(), s, "", w, time.Now())

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.Equal(t, 0, w.calls)
	assert.Equal(t, 1, s.AnsweredCount())

	_, err = Commit(context.Background(), s, "u1", w, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, w.calls)
}

func TestCommit_WriterFailureKeepsAnswers(t *testing.T) {
	s := NewSession("s1", "u1", model.LevelB, 2)
	require.NoError(t, s.RecordScore("i1", 5))
	require.NoError(t, s.RecordNote("i1", "ok"))
	cause := errors.New("connection refused")
	w := &fakeWriter{err: cause}

	_, err := Commit(context.Background(), s, "u1", w, time.Now())

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "s1", perr.SessionID)
	a, ok := s.Answer("i1")
	require.True(t, ok)
	assert.Equal(t, 5, a.Score)
	assert.Equal(t, "ok", a.Note)
	assert.False(t, s.Closed())

	w.err = nil
	records, err := Commit(context.Background(), s, "u1", w, time.Now())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCommit_ClosedSession(t *testing.T) {
	s := NewSession("s1", "u1", model.LevelB, 2)
	s.MarkCommitted(time.Now())

	_, err := Commit(context.Background(), s, "u1", &fakeWriter{}, time.Now())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestCommit_RejectsSessionWithoutScores(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, s *Session)
	}{
		{"no answers", func(t *testing.T, s *Session) {}},
		{"notes only", func(t *testing.T, s *Session) { require.NoError(t, s.RecordNote("i1", "aguardando")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("s1", "u1", model.LevelB, 2)
			tt.setup(t, s)
			w := &fakeWriter{}

			_, err := Commit(context.Background(), s, "u1", w, time.Now())

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "answers", verr.Field)
			assert.Equal(t, 0, w.calls)
			assert.False(t, s.Closed())
		})
	}
}

func TestSessionFromRecords(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	records := []model.AnswerRecord{
		{ItemID: "i1", Score: 5, CreatedAt: at},
		{ItemID: "i2", Note: "só nota", CreatedAt: at},
	}

	s := SessionFromRecords("s1", "u1", model.LevelB, 4, records)

	assert.True(t, s.Closed())
	assert.Equal(t, 1, s.AnsweredCount())
	assert.Equal(t, 25, s.ProgressPercent())
	require.NotNil(t, s.Model().CommittedAt)
	assert.Equal(t, at, *s.Model().CommittedAt)
}
