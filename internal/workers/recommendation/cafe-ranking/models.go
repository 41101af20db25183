// internal/workers/recommendation/cafe-ranking/models.go
package caferanking

import "moodbrew/internal/models"

type Input struct {
	FilterTag string        `json:"filterTag,omitempty"`
	Cafes     []models.Cafe `json:"cafes,omitempty"`
	CafeIDs   []string      `json:"cafeIds,omitempty"`
}

type Output struct {
	CafeRanking models.CafeRankingResult `json:"cafeRanking"`
	TopCafeID   string                   `json:"topCafeId,omitempty"`
}
