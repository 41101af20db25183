// internal/models/results.go
package models

// ResultSource records which path produced a result.
type ResultSource string

const (
	SourceAdvisory ResultSource = "advisory"
	SourceFallback ResultSource = "fallback"
	SourceEmpty    ResultSource = "empty"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

type RecommendedProduct struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Reason      string  `json:"reason"`
	MoodMatch   float64 `json:"moodMatch"`
}

// MoodRecommendationResult lists products in no particular order; callers
// that need an order run the local scoring engine.
type MoodRecommendationResult struct {
	Products    []RecommendedProduct `json:"products"`
	Explanation string               `json:"explanation"`
	Source      ResultSource         `json:"source"`
}

type RankedCafe struct {
	CafeID       string   `json:"cafeId"`
	CafeName     string   `json:"cafeName"`
	Rank         int      `json:"rank"`
	AIScore      float64  `json:"aiScore"`
	Reasoning    string   `json:"reasoning"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// CafeRankingResult ranks are always a permutation of 1..len(Cafes).
type CafeRankingResult struct {
	Cafes   []RankedCafe `json:"cafes"`
	Summary string       `json:"summary"`
	Source  ResultSource `json:"source"`
}

type ReviewSummaryResult struct {
	OverallSentiment Sentiment    `json:"overallSentiment"`
	SentimentScore   float64      `json:"sentimentScore"`
	KeyPoints        []string     `json:"keyPoints"`
	Pros             []string     `json:"pros"`
	Cons             []string     `json:"cons"`
	Summary          string       `json:"summary"`
	Recommendation   string       `json:"recommendation"`
	Source           ResultSource `json:"source"`
}

// Kind names one of the three orchestrated result families.
type Kind string

const (
	KindRecommendations Kind = "recommendations"
	KindRankings        Kind = "rankings"
	KindSummaries       Kind = "summaries"
)
