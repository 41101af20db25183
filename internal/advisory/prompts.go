// internal/advisory/prompts.go
package advisory

import (
	"fmt"
	"strings"

	"moodbrew/internal/models"
)

type prompt struct {
	system      string
	user        string
	temperature float64
	maxTokens   int
}

const moodSystemPrompt = `You are a friendly barista recommending drinks for a customer's mood.
Choose only from the listed drinks. Reply with JSON only, no prose:
{"products":[{"id":"<id>","name":"<name>","description":"<short>","reason":"<why it fits>","moodMatch":<0..1>}],"explanation":"<one or two sentences>"}`

const rankingSystemPrompt = `You are a coffee critic ranking cafes for a customer.
Rank every listed cafe exactly once. Reply with JSON only, no prose:
{"cafes":[{"cafeId":"<id>","cafeName":"<name>","rank":<1..N>,"aiScore":<0..100>,"reasoning":"<short>","strengths":["..."],"improvements":["..."]}],"summary":"<one or two sentences>"}`

const summarySystemPrompt = `You summarise customer reviews of a cafe or drink.
Reply with JSON only, no prose:
{"overallSentiment":"positive|neutral|negative","sentimentScore":<0..1>,"keyPoints":["..."],"pros":["..."],"cons":["..."],"summary":"<two sentences>","recommendation":"<one sentence>"}`

func moodPrompt(mood string, candidates []models.Product) prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Mood: %s\nDrinks:\n", strings.TrimSpace(mood))
	for _, p := range candidates {
		fmt.Fprintf(&b, "- [%s] %s", p.ID, p.Name)
		if p.Description != "" {
			fmt.Fprintf(&b, ": %s", p.Description)
		}
		if len(p.Tags) > 0 {
			fmt.Fprintf(&b, " (tags: %s)", strings.Join(p.Tags, ", "))
		}
		fmt.Fprintf(&b, " rating %.1f\n", p.Rating)
	}
	return prompt{system: moodSystemPrompt, user: b.String(), temperature: 0.8, maxTokens: 800}
}

func rankingPrompt(cafes []models.Cafe, filter string) prompt {
	var b strings.Builder
	if f := strings.TrimSpace(filter); f != "" {
		fmt.Fprintf(&b, "The customer is looking for: %s\n", f)
	}
	b.WriteString("Cafes:\n")
	for _, c := range cafes {
		fmt.Fprintf(&b, "- [%s] %s rating %.1f, %d reviews", c.ID, c.Name, c.Rating, c.ReviewCount)
		if c.PriceRange != "" {
			fmt.Fprintf(&b, ", price %s", c.PriceRange)
		}
		if c.Distance != "" {
			fmt.Fprintf(&b, ", %s away", c.Distance)
		}
		if c.PopularItem != "" {
			fmt.Fprintf(&b, ", known for %s", c.PopularItem)
		}
		b.WriteString("\n")
	}
	return prompt{system: rankingSystemPrompt, user: b.String(), temperature: 0.6, maxTokens: 1000}
}

func summaryPrompt(reviews []models.Review) prompt {
	var b strings.Builder
	b.WriteString("Reviews:\n")
	for _, r := range reviews {
		fmt.Fprintf(&b, "- %d/5: %s\n", r.Rating, oneLine(r.Comment))
	}
	return prompt{system: summarySystemPrompt, user: b.String(), temperature: 0.5, maxTokens: 600}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
