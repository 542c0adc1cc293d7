package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"qualiobra/internal/model"
	"qualiobra/internal/transport/rest/middleware"
)

// DiagnosticSessions is the session API the handler drives
type DiagnosticSessions interface {
	Start(ctx context.Context, userID string, level model.Level) (*model.SessionView, error)
	Get(ctx context.Context, userID, sessionID string) (*model.SessionView, error)
	RecordScore(ctx context.Context, userID, sessionID, itemID string, score int) (*model.SessionView, error)
	RecordNote(ctx context.Context, userID, sessionID, itemID, note string) (*model.SessionView, error)
	Conformity(ctx context.Context, userID, sessionID string) (*model.ConformityReport, error)
	Commit(ctx context.Context, userID, sessionID string) (*model.ConformityReport, error)
	Report(ctx context.Context, userID, sessionID string) (*model.ConformityReport, error)
	History(ctx context.Context, userID string) ([]model.SessionSummary, error)
}

// DiagnosticHandler handles diagnostic session endpoints
type DiagnosticHandler struct {
	diagnosticSvc DiagnosticSessions
}

// NewDiagnosticHandler creates a new diagnostic handler
func NewDiagnosticHandler(diagnosticSvc DiagnosticSessions) *DiagnosticHandler {
	return &DiagnosticHandler{diagnosticSvc: diagnosticSvc}
}

// StartRequest is the request body for opening a session
type StartRequest struct {
	Level model.Level `json:"level"`
}

// ScoreRequest is the request body for scoring an item
type ScoreRequest struct {
	Score *int `json:"score"`
}

// NoteRequest is the request body for an item's note
type NoteRequest struct {
	Note string `json:"note"`
}

// Start handles POST /v1/diagnostic/sessions
func (h *DiagnosticHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.diagnosticSvc.Start(r.Context(), middleware.GetUserID(r.Context()), req.Level)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// History handles GET /v1/diagnostic/sessions
func (h *DiagnosticHandler) History(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.diagnosticSvc.History(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sessions == nil {
		sessions = []model.SessionSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

// Get handles GET /v1/diagnostic/sessions/{id}
func (h *DiagnosticHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.diagnosticSvc.Get(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// RecordScore handles PUT /v1/diagnostic/sessions/{id}/answers/{itemId}/score
func (h *DiagnosticHandler) RecordScore(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Score == nil {
		writeError(w, http.StatusBadRequest, "score is required")
		return
	}

	view, err := h.diagnosticSvc.RecordScore(r.Context(), middleware.GetUserID(r.Context()), vars["id"], vars["itemId"], *req.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// RecordNote handles PUT /v1/diagnostic/sessions/{id}/answers/{itemId}/note
func (h *DiagnosticHandler) RecordNote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.diagnosticSvc.RecordNote(r.Context(), middleware.GetUserID(r.Context()), vars["id"], vars["itemId"], req.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Conformity handles GET /v1/diagnostic/sessions/{id}/conformity
func (h *DiagnosticHandler) Conformity(w http.ResponseWriter, r *http.Request) {
	report, err := h.diagnosticSvc.Conformity(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Commit handles POST /v1/diagnostic/sessions/{id}/commit
func (h *DiagnosticHandler) Commit(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	report, err := h.diagnosticSvc.Commit(r.Context(), middleware.GetUserID(r.Context()), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if report == nil {
		// Answers are stored; the report is available later from /report.
		writeJSON(w, http.StatusOK, map[string]string{"sessionId": sessionID, "status": string(model.SessionCommitted)})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Report handles GET /v1/diagnostic/sessions/{id}/report
func (h *DiagnosticHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.diagnosticSvc.Report(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
