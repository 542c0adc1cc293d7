package model

import "time"

// Classification is the four-way compliance status of an item
type Classification string

const (
	ClassFull          Classification = "CONFORME"
	ClassPartial       Classification = "PARCIAL"
	ClassNonCompliant  Classification = "NAO_CONFORME"
	ClassNotApplicable Classification = "NAO_SE_APLICA"
)

// ClassificationCounts tallies items per classification
type ClassificationCounts struct {
	Full          int `json:"full" bson:"full"`
	Partial       int `json:"partial" bson:"partial"`
	NonCompliant  int `json:"nonCompliant" bson:"nonCompliant"`
	NotApplicable int `json:"notApplicable" bson:"notApplicable"`
	Unanswered    int `json:"unanswered" bson:"unanswered"`
}

// GroupConformity is the conformity of a single requirement group
type GroupConformity struct {
	RequirementCode string               `json:"requirementCode" bson:"requirementCode"`
	Title           string               `json:"title" bson:"title"`
	TotalItems      int                  `json:"totalItems" bson:"totalItems"`
	Counts          ClassificationCounts `json:"counts" bson:"counts"`
	Percentage      float64              `json:"percentage" bson:"percentage"`
}

// ConformityReport summarizes a diagnostic session
type ConformityReport struct {
	SessionID   string               `json:"sessionId" bson:"sessionId"`
	UserID      string               `json:"userId" bson:"userId"`
	Level       Level                `json:"level" bson:"level"`
	TotalItems  int                  `json:"totalItems" bson:"totalItems"`
	Counts      ClassificationCounts `json:"counts" bson:"counts"`
	Percentage  float64              `json:"percentage" bson:"percentage"`
	Progress    Progress             `json:"progress" bson:"progress"`
	Groups      []GroupConformity    `json:"groups" bson:"groups"`
	GeneratedAt time.Time            `json:"generatedAt" bson:"generatedAt"`
}
