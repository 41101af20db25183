// internal/workers/recommendation/flavor-match/models.go
package flavormatch

import (
	"moodbrew/internal/engine"
	"moodbrew/internal/models"
)

type Input struct {
	Tags       []string         `json:"tags"`
	Products   []models.Product `json:"products,omitempty"`
	ProductIDs []string         `json:"productIds,omitempty"`
}

type Output struct {
	FlavorMatch engine.FlavorMatch `json:"flavorMatch"`
}
