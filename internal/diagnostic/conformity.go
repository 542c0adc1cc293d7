package diagnostic

import (
	"math"
	"time"

	"qualiobra/internal/model"
)

// ComputeConformity is 100*(full + 0.5*partial)/total, and 0 when total is 0.
func ComputeConformity(totalItems, full, partial int) float64 {
	if totalItems <= 0 {
		return 0
	}
	return 100 * (float64(full) + 0.5*float64(partial)) / float64(totalItems)
}

// Classify maps a scored answer to its compliance class: 5 is full compliance,
// 3-4 partial, 1-2 non-compliant. Unscored answers report false.
func Classify(a *model.Answer) (model.Classification, bool) {
	if !a.IsAnswered() {
		return "", false
	}
	switch {
	case a.Score == model.ScoreMax:
		return model.ClassFull, true
	case a.Score >= 3:
		return model.ClassPartial, true
	default:
		return model.ClassNonCompliant, true
	}
}

func tally(c *model.ClassificationCounts, a *model.Answer) {
	class, ok := Classify(a)
	if !ok {
		c.Unanswered++
		return
	}
	switch class {
	case model.ClassFull:
		c.Full++
	case model.ClassPartial:
		c.Partial++
	case model.ClassNonCompliant:
		c.NonCompliant++
	}
}

// Evaluate builds the conformity report of a session against the questionnaire.
// Items outside the session's level count as not applicable and stay out of
// every total; unanswered items count against conformity.
func Evaluate(s *Session, items []model.QuestionnaireItem, order GroupOrder) *model.ConformityReport {
	report := &model.ConformityReport{
		SessionID:   s.ID(),
		UserID:      s.UserID(),
		Level:       s.Level(),
		Progress:    s.Progress(),
		Groups:      []model.GroupConformity{},
		GeneratedAt: time.Now(),
	}

	for _, g := range GroupByRequirement(items, order) {
		row := model.GroupConformity{RequirementCode: g.RequirementCode, Title: g.Title}
		for _, item := range g.Items {
			if !s.Level().Includes(item.ApplicableLevel) {
				row.Counts.NotApplicable++
				continue
			}
			row.TotalItems++
			a := s.state.Answers[item.ID]
			tally(&row.Counts, a)
		}
		row.Percentage = round2(ComputeConformity(row.TotalItems, row.Counts.Full, row.Counts.Partial))
		report.Groups = append(report.Groups, row)

		report.TotalItems += row.TotalItems
		report.Counts.Full += row.Counts.Full
		report.Counts.Partial += row.Counts.Partial
		report.Counts.NonCompliant += row.Counts.NonCompliant
		report.Counts.NotApplicable += row.Counts.NotApplicable
		report.Counts.Unanswered += row.Counts.Unanswered
	}

	report.Percentage = round2(ComputeConformity(report.TotalItems, report.Counts.Full, report.Counts.Partial))
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// EvaluateRecords builds the report of a committed session from its persisted
// answer records. The total counts the active items assessed at level.
func EvaluateRecords(sessionID, userID string, level model.Level, records []model.AnswerRecord, items []model.QuestionnaireItem, order GroupOrder) *model.ConformityReport {
	total := 0
	for _, item := range items {
		if level.Includes(item.ApplicableLevel) {
			total++
		}
	}
	return Evaluate(SessionFromRecords(sessionID, userID, level, total, records), items, order)
}
