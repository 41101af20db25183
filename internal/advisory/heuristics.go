// internal/advisory/heuristics.go
package advisory

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"moodbrew/internal/fallback"
	"moodbrew/internal/models"
)

const (
	proseLimit     = 200
	maxKeyPoints   = 3
	heuristicStart = 0.9
	heuristicStep  = 0.1
	heuristicFloor = 0.2
)

var positiveCues = []string{"great", "love", "excellent", "amazing", "delicious", "friendly", "best", "perfect", "cozy", "fresh", "good"}

var negativeCues = []string{"bad", "slow", "rude", "cold", "expensive", "dirty", "noisy", "worst", "bitter", "burnt", "crowded", "overpriced"}

// heuristicRecommendations picks candidates named in the prose, ordered by
// first mention.
func heuristicRecommendations(text string, candidates []models.Product) (models.MoodRecommendationResult, bool) {
	lower := strings.ToLower(text)

	type mention struct {
		at      int
		product models.Product
	}
	mentions := make([]mention, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, p := range candidates {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" || seen[p.ID] {
			continue
		}
		if at := strings.Index(lower, name); at >= 0 {
			seen[p.ID] = true
			mentions = append(mentions, mention{at: at, product: p})
		}
	}
	if len(mentions) == 0 {
		return models.MoodRecommendationResult{}, false
	}
	sort.SliceStable(mentions, func(i, j int) bool { return mentions[i].at < mentions[j].at })

	explanation := prefix(text, proseLimit)
	products := make([]models.RecommendedProduct, len(mentions))
	for i, m := range mentions {
		products[i] = models.RecommendedProduct{
			ID:          m.product.ID,
			Name:        m.product.Name,
			Description: m.product.Description,
			Reason:      explanation,
			MoodMatch:   round2(math.Max(heuristicFloor, heuristicStart-heuristicStep*float64(i))),
		}
	}

	return models.MoodRecommendationResult{
		Products:    products,
		Explanation: explanation,
		Source:      models.SourceAdvisory,
	}, true
}

// heuristicRanking orders cafes by catalog rating and keeps the prose as the
// summary.
func heuristicRanking(text string, cafes []models.Cafe) (models.CafeRankingResult, bool) {
	summary := prefix(text, proseLimit)
	if len(cafes) == 0 || summary == "" {
		return models.CafeRankingResult{}, false
	}

	sorted := append([]models.Cafe(nil), cafes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rating > sorted[j].Rating })

	ranked := make([]models.RankedCafe, len(sorted))
	for i, c := range sorted {
		entry := fallback.RankedFromCafe(c, i+1)
		entry.AIScore = math.Round(clamp(c.Rating*20, 0, 100))
		ranked[i] = entry
	}

	return models.CafeRankingResult{
		Cafes:   ranked,
		Summary: summary,
		Source:  models.SourceAdvisory,
	}, true
}

// heuristicSummary splits the prose into sentences and sorts them by cue
// words; sentiment comes from the ratings.
func heuristicSummary(text string, reviews []models.Review) (models.ReviewSummaryResult, bool) {
	sentences := splitSentences(text)
	if len(sentences) == 0 || len(reviews) == 0 {
		return models.ReviewSummaryResult{}, false
	}

	keyPoints := sentences
	if len(keyPoints) > maxKeyPoints {
		keyPoints = keyPoints[:maxKeyPoints]
	}

	pros := []string{}
	cons := []string{}
	for _, s := range sentences {
		lower := strings.ToLower(s)
		if containsAny(lower, negativeCues) {
			cons = append(cons, s)
		} else if containsAny(lower, positiveCues) {
			pros = append(pros, s)
		}
	}

	mean := fallback.MeanRating(reviews)
	return models.ReviewSummaryResult{
		OverallSentiment: fallback.SentimentForMean(mean),
		SentimentScore:   round2(clamp(mean/5, 0, 1)),
		KeyPoints:        append([]string(nil), keyPoints...),
		Pros:             pros,
		Cons:             cons,
		Summary:          prefix(text, proseLimit),
		Recommendation:   fmt.Sprintf("Rated %.1f out of 5 across %d reviews.", mean, len(reviews)),
		Source:           models.SourceAdvisory,
	}, true
}

func splitSentences(text string) []string {
	text = stripFences(text)
	sentences := make([]string, 0, 8)
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(text[start : i+1]); len(s) > 1 {
				sentences = append(sentences, strings.TrimLeft(s, "-* "))
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, strings.TrimLeft(s, "-* "))
	}
	return sentences
}

func containsAny(s string, cues []string) bool {
	for _, c := range cues {
		if strings.Contains(s, c) {
			return true
		}
	}
	return false
}

// prefix returns the first limit runes of the prose with whitespace folded.
func prefix(text string, limit int) string {
	folded := strings.Join(strings.Fields(stripFences(text)), " ")
	if utf8.RuneCountInString(folded) <= limit {
		return folded
	}
	runes := []rune(folded)
	return strings.TrimSpace(string(runes[:limit]))
}

func stripFences(text string) string {
	return strings.ReplaceAll(text, "```", "")
}
