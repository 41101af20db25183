// internal/fallback/mood.go
package fallback

import (
	"fmt"
	"math"
	"strings"

	"moodbrew/internal/models"
)

const (
	minMoodResults = 4
	moodMatchStart = 0.8
	moodMatchStep  = 0.1
	moodMatchFloor = 0.2
)

// moodPreferences maps a mood to name fragments of drinks that suit it, in
// order of preference.
var moodPreferences = map[string][]string{
	"energized":   {"espresso", "cold brew", "americano", "double"},
	"relaxed":     {"latte", "chamomile", "cappuccino", "honey"},
	"focused":     {"americano", "espresso", "black", "pour over"},
	"happy":       {"caramel", "mocha", "frappe", "vanilla"},
	"cozy":        {"hot chocolate", "chai", "pumpkin", "cinnamon"},
	"adventurous": {"matcha", "lavender", "cardamom", "nitro"},
}

// KnownMoods lists the moods with a preference table, in a stable order.
func KnownMoods() []string {
	return []string{"energized", "relaxed", "focused", "happy", "cozy", "adventurous"}
}

// IsKnownMood reports whether mood has a preference table.
func IsKnownMood(mood string) bool {
	_, ok := moodPreferences[normalizeMood(mood)]
	return ok
}

func normalizeMood(mood string) string {
	return strings.ToLower(strings.TrimSpace(mood))
}

// MoodRecommendations picks candidates whose names match the mood's preferred
// fragments, padded in input order up to four products.
func MoodRecommendations(mood string, candidates []models.Product) models.MoodRecommendationResult {
	if len(candidates) == 0 {
		return EmptyRecommendations()
	}

	mood = normalizeMood(mood)
	prefs := moodPreferences[mood]

	picked := make([]models.Product, 0, len(candidates))
	used := make([]bool, len(candidates))
	for i, p := range candidates {
		if nameMatchesAny(p.Name, prefs) {
			picked = append(picked, p)
			used[i] = true
		}
	}
	for i, p := range candidates {
		if len(picked) >= minMoodResults {
			break
		}
		if !used[i] {
			picked = append(picked, p)
		}
	}

	products := make([]models.RecommendedProduct, len(picked))
	for i, p := range picked {
		products[i] = models.RecommendedProduct{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Reason:      moodReason(mood, i),
			MoodMatch:   MoodMatchAt(i),
		}
	}

	return models.MoodRecommendationResult{
		Products:    products,
		Explanation: moodExplanation(mood),
		Source:      models.SourceFallback,
	}
}

// MoodMatchAt is the decaying confidence for output position i.
func MoodMatchAt(i int) float64 {
	return round2(math.Max(moodMatchFloor, moodMatchStart-moodMatchStep*float64(i)))
}

func nameMatchesAny(name string, fragments []string) bool {
	lower := strings.ToLower(name)
	for _, f := range fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

func moodReason(mood string, i int) string {
	if mood == "" {
		return "A popular pick from our menu"
	}
	if i == 0 {
		return fmt.Sprintf("Our top pick when you're feeling %s", mood)
	}
	return fmt.Sprintf("A good match for a %s mood", mood)
}

func moodExplanation(mood string) string {
	if mood == "" {
		return "Here are some popular drinks from our menu."
	}
	return fmt.Sprintf("Based on your %s mood, we picked drinks that usually fit how you feel.", mood)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
