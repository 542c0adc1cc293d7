package model

// Level is the PBQP-H SiAC assessment tier an item belongs to
type Level string

const (
	LevelB    Level = "B"
	LevelA    Level = "A"
	LevelBoth Level = "AMBOS" // Item applies to both tiers; as a session level, assesses everything
)

// IsValid checks if the Level is a known value
func (l Level) IsValid() bool {
	switch l {
	case LevelB, LevelA, LevelBoth:
		return true
	}
	return false
}

// Includes reports whether an item tagged itemLevel is assessed by a session at level l
func (l Level) Includes(itemLevel Level) bool {
	if l == LevelBoth {
		return itemLevel.IsValid()
	}
	return itemLevel == l || itemLevel == LevelBoth
}

// ScoringKind defines how an item is presented and scored
type ScoringKind string

const (
	ScoringFivePoint ScoringKind = "ESCALA_1_5" // 1-5 scale
	ScoringBinary    ScoringKind = "SIM_NAO"    // Yes/No, stored as 5/1
)

const (
	ScoreMin = 1
	ScoreMax = 5

	BinaryYes = ScoreMax
	BinaryNo  = ScoreMin
)

// Allows reports whether score is a legal value for this scoring kind
func (k ScoringKind) Allows(score int) bool {
	switch k {
	case ScoringBinary:
		return score == BinaryYes || score == BinaryNo
	case ScoringFivePoint, "":
		return score >= ScoreMin && score <= ScoreMax
	}
	return false
}

// QuestionnaireItem is one question of the diagnostic questionnaire
type QuestionnaireItem struct {
	ID                 string      `json:"id" bson:"_id" yaml:"id"`
	NormativeReference string      `json:"normativeReference" bson:"normativeReference" yaml:"normativeReference"`
	ApplicableLevel    Level       `json:"applicableLevel" bson:"applicableLevel" yaml:"applicableLevel"`
	RequirementCode    string      `json:"requirementCode" bson:"requirementCode" yaml:"requirementCode"`
	RequirementTitle   string      `json:"requirementTitle,omitempty" bson:"requirementTitle,omitempty" yaml:"requirementTitle,omitempty"`
	Description        string      `json:"description" bson:"description" yaml:"description"`
	ScoringKind        ScoringKind `json:"scoringKind" bson:"scoringKind" yaml:"scoringKind"`
	DisplayOrder       int         `json:"displayOrder" bson:"displayOrder" yaml:"displayOrder"`
	Active             bool        `json:"active" bson:"active" yaml:"active"`
}

// RequirementGroup is a derived bucket of items sharing a requirement prefix
type RequirementGroup struct {
	RequirementCode string              `json:"requirementCode"`
	Title           string              `json:"title"`
	Items           []QuestionnaireItem `json:"items"`
}
