// internal/models/requests.go
package models

type RecommendationRequest struct {
	Mood       string    `json:"mood"`
	Tags       []string  `json:"tags,omitempty"`
	Candidates []Product `json:"candidates"`
}

type CafeRankingRequest struct {
	FilterTag  string `json:"filterTag,omitempty"`
	Candidates []Cafe `json:"candidates"`
}

type ReviewSummaryRequest struct {
	SubjectID string   `json:"subjectId"`
	Reviews   []Review `json:"reviews"`
}
