// internal/catalog/repository.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"moodbrew/internal/common/errors"
	"moodbrew/internal/models"

	"github.com/lib/pq"
)

// Repository resolves id-only requests into catalog records.
type Repository interface {
	ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	CafesByIDs(ctx context.Context, ids []string) ([]models.Cafe, error)
	ReviewsForSubject(ctx context.Context, subjectID string) ([]models.Review, error)
}

type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productsQuery = `
	SELECT id, name, COALESCE(description, ''), COALESCE(tags, '{}'), COALESCE(weekly_orders, 0),
	       COALESCE(rating, 0), COALESCE(temperature, 'hot'), COALESCE(price, 0)
	FROM products
	WHERE id = ANY($1)`

// ProductsByIDs returns the known products in the order of ids. Unknown ids
// are skipped.
func (r *PostgresRepository) ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	rows, err := r.db.QueryContext(ctx, productsQuery, pq.Array(ids))
	if err != nil {
		return nil, queryFailed(ctx, "products", err)
	}
	defer rows.Close()

	found := make(map[string]models.Product, len(ids))
	for rows.Next() {
		var (
			p    models.Product
			temp string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, pq.Array(&p.Tags), &p.WeeklyOrders, &p.Rating, &temp, &p.Price); err != nil {
			return nil, errors.NewCatalogLookupFailedError("products", err)
		}
		p.Temperature = models.ServeTemperature(temp)
		found[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCatalogLookupFailedError("products", err)
	}

	return inOrder(ids, found), nil
}

const cafesQuery = `
	SELECT id, name, COALESCE(rating, 0), COALESCE(review_count, 0), COALESCE(price_range, ''),
	       COALESCE(location, ''), COALESCE(distance, ''), COALESCE(popular_item, '')
	FROM cafes
	WHERE id = ANY($1)`

func (r *PostgresRepository) CafesByIDs(ctx context.Context, ids []string) ([]models.Cafe, error) {
	if len(ids) == 0 {
		return []models.Cafe{}, nil
	}

	rows, err := r.db.QueryContext(ctx, cafesQuery, pq.Array(ids))
	if err != nil {
		return nil, queryFailed(ctx, "cafes", err)
	}
	defer rows.Close()

	found := make(map[string]models.Cafe, len(ids))
	for rows.Next() {
		var c models.Cafe
		if err := rows.Scan(&c.ID, &c.Name, &c.Rating, &c.ReviewCount, &c.PriceRange, &c.Location, &c.Distance, &c.PopularItem); err != nil {
			return nil, errors.NewCatalogLookupFailedError("cafes", err)
		}
		found[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCatalogLookupFailedError("cafes", err)
	}

	return inOrder(ids, found), nil
}

const reviewsQuery = `
	SELECT id, rating, COALESCE(comment, ''), COALESCE(author, ''), created_at
	FROM reviews
	WHERE subject_id = $1
	ORDER BY created_at DESC, id`

// ReviewsForSubject returns every review of a cafe or product, newest first.
func (r *PostgresRepository) ReviewsForSubject(ctx context.Context, subjectID string) ([]models.Review, error) {
	rows, err := r.db.QueryContext(ctx, reviewsQuery, subjectID)
	if err != nil {
		return nil, queryFailed(ctx, "reviews", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var (
			rv        models.Review
			createdAt time.Time
		)
		if err := rows.Scan(&rv.ID, &rv.Rating, &rv.Comment, &rv.Author, &createdAt); err != nil {
			return nil, errors.NewCatalogLookupFailedError("reviews", err)
		}
		rv.Date = createdAt.UTC().Format(time.DateOnly)
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCatalogLookupFailedError("reviews", fmt.Errorf("subject %s: %w", subjectID, err))
	}
	return reviews, nil
}

// queryFailed reports a timeout when ctx expired before the query returned.
func queryFailed(ctx context.Context, entity string, err error) error {
	if ctx.Err() != nil {
		return errors.NewQueryTimeoutError(entity)
	}
	return errors.NewCatalogLookupFailedError(entity, err)
}

func inOrder[T any](ids []string, found map[string]T) []T {
	out := make([]T, 0, len(found))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if v, ok := found[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, v)
		}
	}
	return out
}
