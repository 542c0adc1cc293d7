package service

import (
	"context"
	"sync"

	"qualiobra/internal/model"
)

type fakeItemRepo struct {
	items []model.QuestionnaireItem
	calls int
	err   error
}

func (r *fakeItemRepo) GetActive(ctx context.Context) ([]model.QuestionnaireItem, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]model.QuestionnaireItem, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, id string) (*model.QuestionnaireItem, error) {
	for i := range r.items {
		if r.items[i].ID == id {
			return &r.items[i], nil
		}
	}
	return nil, nil
}

func (r *fakeItemRepo) Upsert(ctx context.Context, items []model.QuestionnaireItem) error {
	if r.err != nil {
		return r.err
	}
	r.items = append(r.items, items...)
	return nil
}

type fakeAnswerRepo struct {
	mu      sync.Mutex
	records []model.AnswerRecord
	batches int
	err     error
}

func (r *fakeAnswerRepo) InsertAnswers(ctx context.Context, records []model.AnswerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.batches++
	r.records = append(r.records, records...)
	return nil
}

func (r *fakeAnswerRepo) GetBySessionID(ctx context.Context, sessionID string) ([]model.AnswerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.AnswerRecord{}
	for _, rec := range r.records {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeAnswerRepo) ListSessionsByUser(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	index := map[string]int{}
	out := []model.SessionSummary{}
	for _, rec := range r.records {
		if rec.UserID != userID {
			continue
		}
		i, ok := index[rec.SessionID]
		if !ok {
			out = append(out, model.SessionSummary{SessionID: rec.SessionID, Level: rec.Level, CommittedAt: rec.CreatedAt})
			i = len(out) - 1
			index[rec.SessionID] = i
		}
		out[i].AnswerCount++
	}
	return out, nil
}

type event struct {
	userID  string
	msgType string
	payload interface{}
}

type fakeBroadcaster struct {
	events []event
}

func (b *fakeBroadcaster) BroadcastToUser(userID string, msgType string, payload interface{}) {
	b.events = append(b.events, event{userID, msgType, payload})
}

type fakeExporter struct {
	reports []*model.ConformityReport
	err     error
}

func (e *fakeExporter) Export(ctx context.Context, report *model.ConformityReport) error {
	e.reports = append(e.reports, report)
	return e.err
}

func questionnaire() []model.QuestionnaireItem {
	return []model.QuestionnaireItem{
		{ID: "q1", RequirementCode: "4.1", RequirementTitle: "Sistema de gestão", ApplicableLevel: model.LevelB, ScoringKind: model.ScoringBinary, DisplayOrder: 1, Active: true},
		{ID: "q2", RequirementCode: "4.1", ApplicableLevel: model.LevelBoth, ScoringKind: model.ScoringFivePoint, DisplayOrder: 2, Active: true},
		{ID: "q3", RequirementCode: "4.2", ApplicableLevel: model.LevelB, ScoringKind: model.ScoringFivePoint, DisplayOrder: 3, Active: true},
		{ID: "q4", RequirementCode: "5.1", ApplicableLevel: model.LevelA, ScoringKind: model.ScoringFivePoint, DisplayOrder: 4, Active: true},
		{ID: "q5", RequirementCode: "4.10", ApplicableLevel: model.LevelB, ScoringKind: model.ScoringFivePoint, DisplayOrder: 5, Active: true},
		{ID: "old", RequirementCode: "9.9", ApplicableLevel: model.LevelB, ScoringKind: model.ScoringFivePoint, DisplayOrder: 6, Active: false},
	}
}
