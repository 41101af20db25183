// internal/advisory/normalize.go
package advisory

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"moodbrew/internal/common/validation"
	"moodbrew/internal/fallback"
	"moodbrew/internal/models"

	json "github.com/goccy/go-json"
)

const (
	howStructured = "structured"
	howHeuristic  = "heuristic"
)

// extractJSON pulls the outermost JSON object out of an answer that may be
// wrapped in code fences or prose, validates it and decodes it into out.
func extractJSON(text string, schema *validation.Schema, out interface{}) error {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in answer")
	}
	doc := []byte(text[start : end+1])

	if err := schema.ValidateBytes(doc).Err(); err != nil {
		return err
	}
	if err := json.Unmarshal(doc, out); err != nil {
		return fmt.Errorf("decode %s answer: %w", schema.Name(), err)
	}
	return nil
}

func parseRecommendations(text string, candidates []models.Product) (models.MoodRecommendationResult, string, error) {
	var raw struct {
		Products    []models.RecommendedProduct `json:"products"`
		Explanation string                      `json:"explanation"`
	}
	if err := extractJSON(text, recommendationsSchema, &raw); err == nil {
		if result, ok := normalizeRecommendations(raw.Products, raw.Explanation, candidates); ok {
			return result, howStructured, nil
		}
	}

	if result, ok := heuristicRecommendations(text, candidates); ok {
		return result, howHeuristic, nil
	}
	return models.MoodRecommendationResult{}, "", errUnusable
}

// normalizeRecommendations keeps only entries that resolve to a candidate,
// once each, and clamps moodMatch.
func normalizeRecommendations(entries []models.RecommendedProduct, explanation string, candidates []models.Product) (models.MoodRecommendationResult, bool) {
	byID, byName := indexProducts(candidates)
	seen := make(map[string]bool, len(entries))

	products := make([]models.RecommendedProduct, 0, len(entries))
	for _, e := range entries {
		p, ok := byID[e.ID]
		if !ok {
			p, ok = byName[strings.ToLower(strings.TrimSpace(e.Name))]
		}
		if !ok || seen[p.ID] {
			continue
		}
		seen[p.ID] = true

		description := e.Description
		if description == "" {
			description = p.Description
		}
		products = append(products, models.RecommendedProduct{
			ID:          p.ID,
			Name:        p.Name,
			Description: description,
			Reason:      e.Reason,
			MoodMatch:   round2(clamp(e.MoodMatch, 0, 1)),
		})
	}

	if len(products) == 0 {
		return models.MoodRecommendationResult{}, false
	}
	return models.MoodRecommendationResult{
		Products:    products,
		Explanation: strings.TrimSpace(explanation),
		Source:      models.SourceAdvisory,
	}, true
}

type rawRankedCafe struct {
	CafeID       string   `json:"cafeId"`
	CafeName     string   `json:"cafeName"`
	Rank         float64  `json:"rank"`
	AIScore      *float64 `json:"aiScore"`
	Reasoning    string   `json:"reasoning"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

func parseRanking(text string, cafes []models.Cafe) (models.CafeRankingResult, string, error) {
	var raw struct {
		Cafes   []rawRankedCafe `json:"cafes"`
		Summary string          `json:"summary"`
	}
	if err := extractJSON(text, rankingSchema, &raw); err == nil {
		if result, ok := normalizeRanking(raw.Cafes, raw.Summary, cafes); ok {
			return result, howStructured, nil
		}
	}

	if result, ok := heuristicRanking(text, cafes); ok {
		return result, howHeuristic, nil
	}
	return models.CafeRankingResult{}, "", errUnusable
}

// normalizeRanking makes the answer a permutation of cafes: entries resolve
// by id then name, duplicates and unknowns are dropped, missing cafes follow
// in local score order and ranks are reassigned 1..N.
func normalizeRanking(entries []rawRankedCafe, summary string, cafes []models.Cafe) (models.CafeRankingResult, bool) {
	byID := make(map[string]models.Cafe, len(cafes))
	byName := make(map[string]models.Cafe, len(cafes))
	for _, c := range cafes {
		byID[c.ID] = c
		if _, dup := byName[strings.ToLower(c.Name)]; !dup {
			byName[strings.ToLower(c.Name)] = c
		}
	}

	type matched struct {
		rank  float64
		entry models.RankedCafe
	}
	seen := make(map[string]bool, len(cafes))
	found := make([]matched, 0, len(entries))
	for _, e := range entries {
		c, ok := byID[e.CafeID]
		if !ok {
			c, ok = byName[strings.ToLower(strings.TrimSpace(e.CafeName))]
		}
		if !ok || seen[c.ID] {
			continue
		}
		seen[c.ID] = true

		fb := fallback.RankedFromCafe(c, 0)
		score := fb.AIScore
		if e.AIScore != nil {
			score = math.Round(clamp(*e.AIScore, 0, 100))
		}
		reasoning := e.Reasoning
		if reasoning == "" {
			reasoning = fb.Reasoning
		}
		found = append(found, matched{
			rank: e.Rank,
			entry: models.RankedCafe{
				CafeID:       c.ID,
				CafeName:     c.Name,
				AIScore:      score,
				Reasoning:    reasoning,
				Strengths:    nonNil(e.Strengths),
				Improvements: nonNil(e.Improvements),
			},
		})
	}
	if len(found) == 0 {
		return models.CafeRankingResult{}, false
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].rank < found[j].rank })

	ranked := make([]models.RankedCafe, 0, len(cafes))
	for _, m := range found {
		ranked = append(ranked, m.entry)
	}
	for _, c := range fallback.SortByScore(cafes) {
		if !seen[c.ID] {
			seen[c.ID] = true
			ranked = append(ranked, fallback.RankedFromCafe(c, 0))
		}
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return models.CafeRankingResult{
		Cafes:   ranked,
		Summary: strings.TrimSpace(summary),
		Source:  models.SourceAdvisory,
	}, true
}

func parseSummary(text string, reviews []models.Review) (models.ReviewSummaryResult, string, error) {
	var raw struct {
		OverallSentiment string   `json:"overallSentiment"`
		SentimentScore   float64  `json:"sentimentScore"`
		KeyPoints        []string `json:"keyPoints"`
		Pros             []string `json:"pros"`
		Cons             []string `json:"cons"`
		Summary          string   `json:"summary"`
		Recommendation   string   `json:"recommendation"`
	}
	if err := extractJSON(text, summarySchema, &raw); err == nil && strings.TrimSpace(raw.Summary) != "" {
		score := round2(clamp(raw.SentimentScore, 0, 1))
		return models.ReviewSummaryResult{
			OverallSentiment: coerceSentiment(raw.OverallSentiment, score),
			SentimentScore:   score,
			KeyPoints:        nonNil(raw.KeyPoints),
			Pros:             nonNil(raw.Pros),
			Cons:             nonNil(raw.Cons),
			Summary:          strings.TrimSpace(raw.Summary),
			Recommendation:   strings.TrimSpace(raw.Recommendation),
			Source:           models.SourceAdvisory,
		}, howStructured, nil
	}

	if result, ok := heuristicSummary(text, reviews); ok {
		return result, howHeuristic, nil
	}
	return models.ReviewSummaryResult{}, "", errUnusable
}

// coerceSentiment accepts the three known labels in any case; anything else
// is derived from the score on the 5-star scale.
func coerceSentiment(label string, score float64) models.Sentiment {
	switch s := models.Sentiment(strings.ToLower(strings.TrimSpace(label))); s {
	case models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative:
		return s
	}
	return fallback.SentimentForMean(score * 5)
}

func indexProducts(candidates []models.Product) (map[string]models.Product, map[string]models.Product) {
	byID := make(map[string]models.Product, len(candidates))
	byName := make(map[string]models.Product, len(candidates))
	for _, p := range candidates {
		byID[p.ID] = p
		key := strings.ToLower(p.Name)
		if _, dup := byName[key]; !dup {
			byName[key] = p
		}
	}
	return byID, byName
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
