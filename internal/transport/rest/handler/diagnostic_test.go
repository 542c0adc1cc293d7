package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qualiobra/internal/diagnostic"
	"qualiobra/internal/model"
	"qualiobra/internal/service"
	"qualiobra/internal/transport/rest/middleware"
)

type call struct {
	userID, sessionID, itemID, note string
	level                           model.Level
	score                           int
}

type fakeSessions struct {
	last      call
	err       error
	nilReport bool
}

func (f *fakeSessions) view() *model.SessionView {
	return &model.SessionView{
		DiagnosticSession: &model.DiagnosticSession{ID: "s1", UserID: f.last.userID, Level: model.LevelB, Status: model.SessionOpen},
		Progress:          model.Progress{AnsweredCount: 1, TotalCount: 4, ProgressPercent: 25},
	}
}

func (f *fakeSessions) Start(ctx context.Context, userID string, level model.Level) (*model.SessionView, error) {
	f.last = call{userID: userID, level: level}
	if f.err != nil {
		return nil, f.err
	}
	return f.view(), nil
}

func (f *fakeSessions) Get(ctx context.Context, userID, sessionID string) (*model.SessionView, error) {
	f.last = call{userID: userID, sessionID: sessionID}
	if f.err != nil {
		return nil, f.err
	}
	return f.view(), nil
}

func (f *fakeSessions) RecordScore(ctx context.Context, userID, sessionID, itemID string, score int) (*model.SessionView, error) {
	f.last = call{userID: userID, sessionID: sessionID, itemID: itemID, score: score}
	if f.err != nil {
		return nil, f.err
	}
	return f.view(), nil
}

func (f *fakeSessions) RecordNote(ctx context.Context, userID, sessionID, itemID, note string) (*model.SessionView, error) {
	f.last = call{userID: userID, sessionID: sessionID, itemID: itemID, note: note}
	if f.err != nil {
		return nil, f.err
	}
	return f.view(), nil
}

func (f *fakeSessions) report(userID, sessionID string) (*model.ConformityReport, error) {
	f.last = call{userID: userID, sessionID: sessionID}
	if f.err != nil {
		return nil, f.err
	}
	if f.nilReport {
		return nil, nil
	}
	return &model.ConformityReport{SessionID: sessionID, UserID: userID, Percentage: 62.5}, nil
}

func (f *fakeSessions) Conformity(ctx context.Context, userID, sessionID string) (*model.ConformityReport, error) {
	return f.report(userID, sessionID)
}

func (f *fakeSessions) Commit(ctx context.Context, userID, sessionID string) (*model.ConformityReport, error) {
	return f.report(userID, sessionID)
}

func (f *fakeSessions) Report(ctx context.Context, userID, sessionID string) (*model.ConformityReport, error) {
	return f.report(userID, sessionID)
}

func (f *fakeSessions) History(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	f.last = call{userID: userID}
	return nil, f.err
}

func newRequest(method, target, body string, vars map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), "u1"))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDiagnosticHandler_Start(t *testing.T) {
	svc := &fakeSessions{}
	h := NewDiagnosticHandler(svc)

	rec := httptest.NewRecorder()
	h.Start(rec, newRequest(http.MethodPost, "/v1/diagnostic/sessions", `{"level":"B"}`, nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, call{userID: "u1", level: model.LevelB}, svc.last)
	body := decode(t, rec)
	assert.Equal(t, "s1", body["id"])
	assert.Equal(t, float64(25), body["progress"].(map[string]interface{})["progressPercent"])

	rec = httptest.NewRecorder()
	h.Start(rec, newRequest(http.MethodPost, "/v1/diagnostic/sessions", `{`, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDiagnosticHandler_RecordScore(t *testing.T) {
	svc := &fakeSessions{}
	h := NewDiagnosticHandler(svc)
	vars := map[string]string{"id": "s1", "itemId": "q2"}

	rec := httptest.NewRecorder()
	h.RecordScore(rec, newRequest(http.MethodPut, "/", `{"score":4}`, vars))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, call{userID: "u1", sessionID: "s1", itemID: "q2", score: 4}, svc.last)

	rec = httptest.NewRecorder()
	h.RecordScore(rec, newRequest(http.MethodPut, "/", `{}`, vars))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "score is required", decode(t, rec)["error"])
}

func TestDiagnosticHandler_RecordNote(t *testing.T) {
	svc := &fakeSessions{}
	h := NewDiagnosticHandler(svc)

	rec := httptest.NewRecorder()
	h.RecordNote(rec, newRequest(http.MethodPut, "/", `{"note":"ver procedimento"}`, map[string]string{"id": "s1", "itemId": "q3"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ver procedimento", svc.last.note)
	assert.Equal(t, "q3", svc.last.itemID)
}

func TestDiagnosticHandler_History(t *testing.T) {
	h := NewDiagnosticHandler(&fakeSessions{})

	rec := httptest.NewRecorder()
	h.History(rec, newRequest(http.MethodGet, "/v1/diagnostic/sessions", "", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessions":[]}`, rec.Body.String())
}

func TestDiagnosticHandler_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &diagnostic.ValidationError{Field: "score", Value: 7}, http.StatusBadRequest},
		{"invalid level", service.ErrInvalidLevel, http.StatusBadRequest},
		{"persistence", &diagnostic.PersistenceError{SessionID: "s1", Err: errors.New("timeout")}, http.StatusBadGateway},
		{"persistence without identity", &diagnostic.PersistenceError{SessionID: "s1", Err: diagnostic.ErrNoIdentity}, http.StatusBadGateway},
		{"no identity", diagnostic.ErrNoIdentity, http.StatusUnauthorized},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"session not found", service.ErrSessionNotFound, http.StatusNotFound},
		{"item not found", service.ErrItemNotFound, http.StatusNotFound},
		{"closed", diagnostic.ErrSessionClosed, http.StatusConflict},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewDiagnosticHandler(&fakeSessions{err: tt.err})

			rec := httptest.NewRecorder()
			h.Commit(rec, newRequest(http.MethodPost, "/", "", map[string]string{"id": "s1"}))

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestDiagnosticHandler_Reports(t *testing.T) {
	svc := &fakeSessions{}
	h := NewDiagnosticHandler(svc)
	vars := map[string]string{"id": "s7"}

	for name, fn := range map[string]http.HandlerFunc{
		"conformity": h.Conformity,
		"commit":     h.Commit,
		"report":     h.Report,
		"get":        h.Get,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			fn(rec, newRequest(http.MethodGet, "/", "", vars))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "s7", svc.last.sessionID)
			assert.Equal(t, "u1", svc.last.userID)
		})
	}
}

func TestDiagnosticHandler_CommitWithoutReport(t *testing.T) {
	h := NewDiagnosticHandler(&fakeSessions{nilReport: true})

	rec := httptest.NewRecorder()
	h.Commit(rec, newRequest(http.MethodPost, "/", "", map[string]string{"id": "s3"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessionId":"s3","status":"committed"}`, rec.Body.String())
}
