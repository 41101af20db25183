// internal/advisory/schemas.go
package advisory

import "moodbrew/internal/common/validation"

// Ranges are not constrained here; out-of-range numbers are clamped during
// normalization instead of discarding an otherwise usable answer.

var recommendationsSchema = validation.MustCompile("recommendations", `{
  "type": "object",
  "required": ["products"],
  "properties": {
    "products": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "moodMatch"],
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "reason": {"type": "string"},
          "moodMatch": {"type": "number"}
        }
      }
    },
    "explanation": {"type": "string"}
  }
}`)

var rankingSchema = validation.MustCompile("rankings", `{
  "type": "object",
  "required": ["cafes"],
  "properties": {
    "cafes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["rank"],
        "anyOf": [
          {"required": ["cafeId"]},
          {"required": ["cafeName"]}
        ],
        "properties": {
          "cafeId": {"type": "string"},
          "cafeName": {"type": "string"},
          "rank": {"type": "number"},
          "aiScore": {"type": "number"},
          "reasoning": {"type": "string"},
          "strengths": {"type": "array", "items": {"type": "string"}},
          "improvements": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "summary": {"type": "string"}
  }
}`)

var summarySchema = validation.MustCompile("summaries", `{
  "type": "object",
  "required": ["overallSentiment", "sentimentScore", "summary"],
  "properties": {
    "overallSentiment": {"type": "string"},
    "sentimentScore": {"type": "number"},
    "keyPoints": {"type": "array", "items": {"type": "string"}},
    "pros": {"type": "array", "items": {"type": "string"}},
    "cons": {"type": "array", "items": {"type": "string"}},
    "summary": {"type": "string"},
    "recommendation": {"type": "string"}
  }
}`)
