package handler

import (
	"context"
	"net/http"

	"qualiobra/internal/model"
)

// QuestionnaireGroups serves the questionnaire grouped by requirement
type QuestionnaireGroups interface {
	Groups(ctx context.Context, level model.Level) ([]model.RequirementGroup, error)
}

// QuestionnaireHandler handles questionnaire endpoints
type QuestionnaireHandler struct {
	questionnaireSvc QuestionnaireGroups
}

// NewQuestionnaireHandler creates a new questionnaire handler
func NewQuestionnaireHandler(questionnaireSvc QuestionnaireGroups) *QuestionnaireHandler {
	return &QuestionnaireHandler{questionnaireSvc: questionnaireSvc}
}

// Items handles GET /v1/diagnostic/items?level=B
func (h *QuestionnaireHandler) Items(w http.ResponseWriter, r *http.Request) {
	level := model.Level(r.URL.Query().Get("level"))

	groups, err := h.questionnaireSvc.Groups(r.Context(), level)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	count := 0
	for _, g := range groups {
		count += len(g.Items)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"level":      level,
		"totalItems": count,
		"groups":     groups,
	})
}
