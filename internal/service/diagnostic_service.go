package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"qualiobra/internal/cache"
	"qualiobra/internal/diagnostic"
	"qualiobra/internal/model"
	"qualiobra/internal/repository"
)

var (
	ErrSessionNotFound = errors.New("diagnostic session not found")
	ErrForbidden       = errors.New("session belongs to another user")
)

// DiagnosticService runs diagnostic sessions: start, score, note, commit, report
type DiagnosticService struct {
	questionnaire *QuestionnaireService
	answerRepo    repository.AnswerRepo
	sessions      cache.SessionCache
	exporter      ReportExporter
	broadcaster   Broadcaster
	now           func() time.Time
}

// NewDiagnosticService creates a new diagnostic service
func NewDiagnosticService(
	questionnaire *QuestionnaireService,
	answerRepo repository.AnswerRepo,
	sessions cache.SessionCache,
) *DiagnosticService {
	return &DiagnosticService{
		questionnaire: questionnaire,
		answerRepo:    answerRepo,
		sessions:      sessions,
		exporter:      NopExporter{},
		now:           time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *DiagnosticService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetExporter sets where committed reports are shipped
func (s *DiagnosticService) SetExporter(e ReportExporter) {
	s.exporter = e
}

func (s *DiagnosticService) broadcast(userID, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToUser(userID, msgType, payload)
	}
}

// Start opens a new session for userID at level
func (s *DiagnosticService) Start(ctx context.Context, userID string, level model.Level) (*model.SessionView, error) {
	if userID == "" {
		return nil, diagnostic.ErrNoIdentity
	}
	if !level.IsValid() {
		return nil, ErrInvalidLevel
	}

	items, err := s.questionnaire.ActiveItems(ctx, level)
	if err != nil {
		return nil, err
	}

	sess := diagnostic.NewSession(uuid.NewString(), userID, level, len(items))
	if err := s.sessions.Set(ctx, sess.Model()); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	log.Printf("Diagnostic session %s started by %s (level %s, %d items)", sess.ID(), userID, level, len(items))
	return sess.View(), nil
}

// load fetches a session and checks ownership
func (s *DiagnosticService) load(ctx context.Context, userID, sessionID string) (*diagnostic.Session, error) {
	m, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if m == nil {
		return nil, ErrSessionNotFound
	}
	if m.UserID != userID {
		return nil, ErrForbidden
	}
	return diagnostic.FromModel(m), nil
}

func (s *DiagnosticService) save(ctx context.Context, sess *diagnostic.Session) error {
	if err := s.sessions.Set(ctx, sess.Model()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get returns a session with its progress
func (s *DiagnosticService) Get(ctx context.Context, userID, sessionID string) (*model.SessionView, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.View(), nil
}

// RecordScore scores an item, enforcing the item's scoring kind
func (s *DiagnosticService) RecordScore(ctx context.Context, userID, sessionID, itemID string, score int) (*model.SessionView, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Closed() {
		return nil, diagnostic.ErrSessionClosed
	}

	item, err := s.questionnaire.Item(ctx, sess.Level(), itemID)
	if err != nil {
		return nil, err
	}
	if !item.ScoringKind.Allows(score) {
		reason := "must be between 1 and 5"
		if item.ScoringKind == model.ScoringBinary {
			reason = fmt.Sprintf("yes/no items take %d or %d", model.BinaryNo, model.BinaryYes)
		}
		return nil, &diagnostic.ValidationError{Field: "score", Value: score, Reason: reason}
	}

	if err := sess.RecordScore(itemID, score); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	view := sess.View()
	s.broadcast(userID, EventProgressUpdate, map[string]interface{}{
		"sessionId": sess.ID(),
		"progress":  view.Progress,
	})
	return view, nil
}

// RecordNote sets the justification note of an item
func (s *DiagnosticService) RecordNote(ctx context.Context, userID, sessionID, itemID, note string) (*model.SessionView, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Closed() {
		return nil, diagnostic.ErrSessionClosed
	}
	if _, err := s.questionnaire.Item(ctx, sess.Level(), itemID); err != nil {
		return nil, err
	}

	if err := sess.RecordNote(itemID, note); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess.View(), nil
}

// Conformity evaluates the live session
func (s *DiagnosticService) Conformity(ctx context.Context, userID, sessionID string) (*model.ConformityReport, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	items, err := s.questionnaire.AllActive(ctx)
	if err != nil {
		return nil, err
	}
	return diagnostic.Evaluate(sess, items, s.questionnaire.Order()), nil
}

// Commit persists every answer of the session in one batch. A failed commit
// leaves the session open with all its answers; it is never retried here.
// Once the answers are stored the commit succeeds: if the questionnaire
// cannot be loaded afterwards the report is nil and can be fetched later
// through Report.
func (s *DiagnosticService) Commit(ctx context.Context, userID, sessionID string) (*model.ConformityReport, error) {
	if userID == "" {
		return nil, &diagnostic.PersistenceError{SessionID: sessionID, Err: diagnostic.ErrNoIdentity}
	}
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	records, err := diagnostic.Commit(ctx, sess, userID, s.answerRepo, now)
	if err != nil {
		log.Printf("Commit of session %s failed: %v", sessionID, err)
		return nil, err
	}

	sess.MarkCommitted(now)
	if err := s.save(ctx, sess); err != nil {
		// The session stays open in the cache; answer writes are upserts, so committing again is safe.
		log.Printf("Session %s committed but its state was not updated: %v", sessionID, err)
	}
	log.Printf("Diagnostic session %s committed (%d answers)", sessionID, len(records))

	items, err := s.questionnaire.AllActive(ctx)
	if err != nil {
		log.Printf("Report for committed session %s not built: %v", sessionID, err)
		s.broadcast(userID, EventSessionCommitted, map[string]interface{}{
			"sessionId": sessionID,
		})
		return nil, nil
	}
	report := diagnostic.Evaluate(sess, items, s.questionnaire.Order())

	if err := s.exporter.Export(ctx, report); err != nil {
		log.Printf("Report export for session %s failed: %v", sessionID, err)
	}

	s.broadcast(userID, EventSessionCommitted, map[string]interface{}{
		"sessionId":  sessionID,
		"percentage": report.Percentage,
	})
	return report, nil
}

// Report evaluates a committed session from its persisted answers
func (s *DiagnosticService) Report(ctx context.Context, userID, sessionID string) (*model.ConformityReport, error) {
	records, err := s.answerRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrSessionNotFound
	}
	if records[0].UserID != userID {
		return nil, ErrForbidden
	}

	items, err := s.questionnaire.AllActive(ctx)
	if err != nil {
		return nil, err
	}
	return diagnostic.EvaluateRecords(sessionID, userID, records[0].Level, records, items, s.questionnaire.Order()), nil
}

// History lists the committed sessions of a user, newest first
func (s *DiagnosticService) History(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	if userID == "" {
		return nil, diagnostic.ErrNoIdentity
	}
	return s.answerRepo.ListSessionsByUser(ctx, userID)
}
