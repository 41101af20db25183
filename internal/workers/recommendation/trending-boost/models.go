// internal/workers/recommendation/trending-boost/models.go
package trendingboost

import (
	"moodbrew/internal/models"
	"moodbrew/internal/scoring"
)

type Input struct {
	Mood       string                 `json:"mood"`
	Products   []models.Product       `json:"products,omitempty"`
	ProductIDs []string               `json:"productIds,omitempty"`
	Weather    *models.WeatherReading `json:"weather,omitempty"`
}

type Output struct {
	Trending []scoring.ScoredProduct `json:"trending"`
}
