// internal/workers/recommendation/mood-recommendation/models.go
package moodrecommendation

import "moodbrew/internal/models"

// Input carries either full product records or ids to resolve through the
// catalog.
type Input struct {
	Mood       string                 `json:"mood"`
	Tags       []string               `json:"tags,omitempty"`
	Products   []models.Product       `json:"products,omitempty"`
	ProductIDs []string               `json:"productIds,omitempty"`
	Weather    *models.WeatherReading `json:"weather,omitempty"`
}

type Output struct {
	MoodRecommendations models.MoodRecommendationResult `json:"moodRecommendations"`
}
