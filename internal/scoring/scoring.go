// internal/scoring/scoring.go
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"moodbrew/internal/models"
)

// Config holds the tunable thresholds of the local re-ranker.
type Config struct {
	WarmThreshold       float64 // degrees Celsius; above this iced drinks lead
	PopularityThreshold int     // weekly orders needed for the boost
	PopularityBoost     float64
	MaxResults          int
}

func DefaultConfig() Config {
	return Config{
		WarmThreshold:       25,
		PopularityThreshold: 200,
		PopularityBoost:     1.25,
		MaxResults:          10,
	}
}

// ScoredProduct is a product with its position-derived presentation data.
type ScoredProduct struct {
	Product       models.Product `json:"product"`
	BoostedRating float64        `json:"boostedRating"`
	Confidence    float64        `json:"confidence"`
	Pairing       string         `json:"pairing"`
	TrendingBadge string         `json:"trendingBadge,omitempty"`
}

var precipitationWords = []string{"rain", "drizzle", "shower", "storm", "thunder", "snow", "sleet"}

var pairings = []string{
	"Pairs well with a butter croissant",
	"Try it with dark chocolate",
	"Great alongside a blueberry muffin",
	"Perfect with an almond biscotti",
	"Lovely with a slice of banana bread",
}

const genericPairing = "Enjoy with your favourite pastry"

// Engine re-ranks catalog products from local signals only.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.WarmThreshold == 0 {
		cfg.WarmThreshold = def.WarmThreshold
	}
	if cfg.PopularityThreshold == 0 {
		cfg.PopularityThreshold = def.PopularityThreshold
	}
	if cfg.PopularityBoost == 0 {
		cfg.PopularityBoost = def.PopularityBoost
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = def.MaxResults
	}
	return &Engine{cfg: cfg}
}

// Rank filters products to the mood, orders them by weather fit and boosted
// rating, and truncates to MaxResults. The final sort is stable, so the
// weather partition decides the order between equally rated products.
func (e *Engine) Rank(products []models.Product, mood string, weather *models.WeatherReading) []ScoredProduct {
	mood = strings.ToLower(strings.TrimSpace(mood))
	if mood == "" || len(products) == 0 {
		return []ScoredProduct{}
	}

	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if hasTag(p.Tags, mood) {
			filtered = append(filtered, p)
		}
	}

	ordered, boosted := e.order(filtered, weather)
	if len(ordered) > e.cfg.MaxResults {
		ordered = ordered[:e.cfg.MaxResults]
	}

	out := make([]ScoredProduct, len(ordered))
	for pos, p := range ordered {
		out[pos] = ScoredProduct{
			Product:       p,
			BoostedRating: boosted[pos],
			Confidence:    ConfidenceAt(pos, e.cfg.MaxResults),
			Pairing:       PairingAt(pos),
			TrendingBadge: TrendingBadgeAt(pos),
		}
	}
	return out
}

// Order applies the weather partition and boosted-rating sort to products
// without filtering or truncating them.
func (e *Engine) Order(products []models.Product, weather *models.WeatherReading) []models.Product {
	ordered, _ := e.order(products, weather)
	return ordered
}

func (e *Engine) order(products []models.Product, weather *models.WeatherReading) ([]models.Product, []float64) {
	if weather != nil {
		switch {
		case weather.Temperature > e.cfg.WarmThreshold:
			products = partition(products, models.ServeIced)
		case IsPrecipitation(weather.Condition):
			products = partition(products, models.ServeHot)
		}
	}

	boosted := make([]float64, len(products))
	order := make([]int, len(products))
	for i, p := range products {
		boosted[i] = e.boost(p)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return boosted[order[a]] > boosted[order[b]]
	})

	outProducts := make([]models.Product, len(order))
	outBoosted := make([]float64, len(order))
	for pos, idx := range order {
		outProducts[pos] = products[idx]
		outBoosted[pos] = boosted[idx]
	}
	return outProducts, outBoosted
}

func (e *Engine) boost(p models.Product) float64 {
	if p.WeeklyOrders > e.cfg.PopularityThreshold {
		return p.Rating * e.cfg.PopularityBoost
	}
	return p.Rating
}

// ConfidenceAt is 0.75 + 0.2*(n-pos)/n rounded to two decimals, where n is
// the result cap.
func ConfidenceAt(pos, n int) float64 {
	if n <= 0 {
		n = DefaultConfig().MaxResults
	}
	v := 0.75 + 0.2*float64(n-pos)/float64(n)
	return math.Round(v*100) / 100
}

func PairingAt(pos int) string {
	if pos >= 0 && pos < len(pairings) {
		return pairings[pos]
	}
	return genericPairing
}

func TrendingBadgeAt(pos int) string {
	if pos >= 0 && pos < 3 {
		return fmt.Sprintf("#%d Trending", pos+1)
	}
	return ""
}

// IsPrecipitation reports whether a weather condition describes falling water or snow.
func IsPrecipitation(condition string) bool {
	c := strings.ToLower(condition)
	for _, w := range precipitationWords {
		if strings.Contains(c, w) {
			return true
		}
	}
	return false
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(strings.TrimSpace(t), want) {
			return true
		}
	}
	return false
}

// partition moves products served at temp to the front, keeping relative order.
func partition(products []models.Product, temp models.ServeTemperature) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Temperature == temp {
			out = append(out, p)
		}
	}
	for _, p := range products {
		if p.Temperature != temp {
			out = append(out, p)
		}
	}
	return out
}
