// internal/models/catalog.go
package models

// ServeTemperature is how a drink is served.
type ServeTemperature string

const (
	ServeHot  ServeTemperature = "hot"
	ServeIced ServeTemperature = "iced"
)

type Product struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Tags         []string         `json:"tags"`
	WeeklyOrders int              `json:"weeklyOrders,omitempty"`
	Rating       float64          `json:"rating"`
	Temperature  ServeTemperature `json:"temperature"`
	Price        float64          `json:"price,omitempty"`
}

// TagSet exposes the product's tags to the flavor matcher.
func (p Product) TagSet() []string {
	return p.Tags
}

type Cafe struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	PriceRange  string  `json:"priceRange,omitempty"`
	Location    string  `json:"location,omitempty"`
	Distance    string  `json:"distance,omitempty"`
	PopularItem string  `json:"popularItem,omitempty"`
}

type Review struct {
	ID      string `json:"id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Author  string `json:"author,omitempty"`
	Date    string `json:"date,omitempty"`
}

// WeatherReading is the ambient context consumed by local scoring.
// Temperature is in degrees Celsius.
type WeatherReading struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
}

// ProductIDs returns the ids of products in input order.
func ProductIDs(products []Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func CafeIDs(cafes []Cafe) []string {
	ids := make([]string, len(cafes))
	for i, c := range cafes {
		ids[i] = c.ID
	}
	return ids
}

func ReviewIDs(reviews []Review) []string {
	ids := make([]string, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
	}
	return ids
}
