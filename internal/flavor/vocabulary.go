// internal/flavor/vocabulary.go
package flavor

import "strings"

// Tag is one entry of the flavor vocabulary.
type Tag struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Descriptor string `json:"descriptor"`
}

var vocabulary = []Tag{
	{ID: "chocolate", Name: "Chocolate", Descriptor: "rich cocoa"},
	{ID: "caramel", Name: "Caramel", Descriptor: "buttery caramel"},
	{ID: "vanilla", Name: "Vanilla", Descriptor: "smooth vanilla"},
	{ID: "nutty", Name: "Nutty", Descriptor: "toasted nut"},
	{ID: "fruity", Name: "Fruity", Descriptor: "bright berry"},
	{ID: "floral", Name: "Floral", Descriptor: "delicate floral"},
	{ID: "spicy", Name: "Spicy", Descriptor: "warming spice"},
	{ID: "citrus", Name: "Citrus", Descriptor: "zesty citrus"},
	{ID: "earthy", Name: "Earthy", Descriptor: "deep earthy"},
	{ID: "smoky", Name: "Smoky", Descriptor: "smoky roast"},
	{ID: "creamy", Name: "Creamy", Descriptor: "velvety cream"},
	{ID: "sweet", Name: "Sweet", Descriptor: "honeyed sweetness"},
}

var byID = func() map[string]Tag {
	m := make(map[string]Tag, len(vocabulary))
	for _, t := range vocabulary {
		m[t.ID] = t
	}
	return m
}()

// Vocabulary returns a copy of the fixed tag list in display order.
func Vocabulary() []Tag {
	return append([]Tag(nil), vocabulary...)
}

// Lookup finds a tag by id, case-insensitively.
func Lookup(id string) (Tag, bool) {
	t, ok := byID[normalize(id)]
	return t, ok
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
