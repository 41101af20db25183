// internal/transport/httpapi/handlers.go
package httpapi

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"moodbrew/internal/common/errors"
	"moodbrew/internal/fallback"
	"moodbrew/internal/flavor"
	"moodbrew/internal/models"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

type recommendationBody struct {
	Mood       string                 `json:"mood"`
	Tags       []string               `json:"tags,omitempty"`
	Products   []models.Product       `json:"products,omitempty"`
	ProductIDs []string               `json:"productIds,omitempty"`
	Weather    *models.WeatherReading `json:"weather,omitempty"`
}

type rankingBody struct {
	FilterTag string        `json:"filterTag,omitempty"`
	Cafes     []models.Cafe `json:"cafes,omitempty"`
	CafeIDs   []string      `json:"cafeIds,omitempty"`
}

// summaryBody leaves Reviews nil to load them from the catalog.
type summaryBody struct {
	Reviews *[]models.Review `json:"reviews,omitempty"`
}

type trendingBody struct {
	Mood       string                 `json:"mood"`
	Products   []models.Product       `json:"products,omitempty"`
	ProductIDs []string               `json:"productIds,omitempty"`
	Weather    *models.WeatherReading `json:"weather,omitempty"`
}

type flavorMatchBody struct {
	Tags       []string         `json:"tags"`
	Products   []models.Product `json:"products,omitempty"`
	ProductIDs []string         `json:"productIds,omitempty"`
}

func decode(r *http.Request, w http.ResponseWriter, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.NewParseError(err)
	}
	return nil
}

// decodeOptional is decode for endpoints whose body may be absent. A
// chunked request can carry an empty body with an unknown length.
func decodeOptional(r *http.Request, w http.ResponseWriter, v interface{}) error {
	if r.ContentLength == 0 || r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.NewParseError(err)
	}
	return nil
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failing := map[string]string{}
	for _, c := range h.checkers {
		if err := c.Ping(ctx); err != nil {
			failing[c.Name()] = err.Error()
		}
	}
	if len(failing) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "not ready",
			"failing": failing,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request) {
	var body recommendationBody
	if err := decode(r, w, &body); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if strings.TrimSpace(body.Mood) == "" && len(body.Tags) == 0 {
		h.writeFailure(w, r, errors.NewInvalidInputError("mood or tags are required"))
		return
	}

	products, err := h.products(r.Context(), body.Products, body.ProductIDs)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	result := h.service.RecommendForMood(r.Context(), models.RecommendationRequest{
		Mood:       body.Mood,
		Tags:       body.Tags,
		Candidates: products,
	}, body.Weather)
	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) rank(w http.ResponseWriter, r *http.Request) {
	var body rankingBody
	if err := decode(r, w, &body); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	cafes := body.Cafes
	if len(cafes) == 0 && len(body.CafeIDs) > 0 {
		if h.catalog == nil {
			h.writeFailure(w, r, errors.NewInvalidInputError("cafes are required when no catalog is configured"))
			return
		}
		var err error
		if cafes, err = h.catalog.CafesByIDs(r.Context(), body.CafeIDs); err != nil {
			h.writeFailure(w, r, err)
			return
		}
	}

	result := h.service.RankCafes(r.Context(), models.CafeRankingRequest{
		FilterTag:  body.FilterTag,
		Candidates: cafes,
	})
	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) summarize(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")

	var body summaryBody
	if err := decodeOptional(r, w, &body); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	var reviews []models.Review
	if body.Reviews != nil {
		reviews = *body.Reviews
	} else {
		if h.catalog == nil {
			h.writeFailure(w, r, errors.NewInvalidInputError("reviews are required when no catalog is configured"))
			return
		}
		var err error
		if reviews, err = h.catalog.ReviewsForSubject(r.Context(), subjectID); err != nil {
			h.writeFailure(w, r, err)
			return
		}
	}

	result := h.service.SummarizeReviews(r.Context(), models.ReviewSummaryRequest{
		SubjectID: subjectID,
		Reviews:   reviews,
	})
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"summary":     result,
		"reviewCount": len(reviews),
	})
}

func (h *Handler) invalidateSummaries(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")

	n, err := h.service.InvalidateReviews(r.Context(), subjectID)
	if err != nil {
		h.writeFailure(w, r, errors.NewCacheUnavailableError("invalidate", err))
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"subjectId":            subjectID,
		"invalidatedSummaries": n,
	})
}

func (h *Handler) trending(w http.ResponseWriter, r *http.Request) {
	var body trendingBody
	if err := decode(r, w, &body); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if strings.TrimSpace(body.Mood) == "" {
		h.writeFailure(w, r, errors.NewInvalidInputError("mood is required"))
		return
	}

	products, err := h.products(r.Context(), body.Products, body.ProductIDs)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"trending": h.service.Trending(products, body.Mood, body.Weather),
	})
}

// moods lists the moods the offline fallback has preference tables for.
func (h *Handler) moods(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]interface{}{"moods": fallback.KnownMoods()})
}

func (h *Handler) flavors(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"tags":        flavor.Vocabulary(),
		"maxSelected": h.service.MaxSelected(),
	})
}

func (h *Handler) matchFlavors(w http.ResponseWriter, r *http.Request) {
	var body flavorMatchBody
	if err := decode(r, w, &body); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if len(body.Tags) == 0 {
		h.writeFailure(w, r, errors.NewInvalidInputError("at least one tag is required"))
		return
	}

	products, err := h.products(r.Context(), body.Products, body.ProductIDs)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, h.service.MatchFlavors(products, body.Tags))
}

// products returns inline products, or loads ids from the catalog when none
// are inline.
func (h *Handler) products(ctx context.Context, inline []models.Product, ids []string) ([]models.Product, error) {
	if len(inline) > 0 || len(ids) == 0 {
		return inline, nil
	}
	if h.catalog == nil {
		return nil, errors.NewInvalidInputError("products are required when no catalog is configured")
	}
	return h.catalog.ProductsByIDs(ctx, ids)
}
