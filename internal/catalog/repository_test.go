package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"moodbrew/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestProductsByIDs_KeepsRequestOrder(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "tags", "weekly_orders", "rating", "temperature", "price"}).
		AddRow("p2", "Iced Latte", "Cold and creamy", "{relaxed,sweet}", 250, 4.5, "iced", 4.2).
		AddRow("p1", "Espresso", "", "{energized}", 90, 4.8, "hot", 2.5)
	mock.ExpectQuery(`SELECT id, name`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	products, err := repo.ProductsByIDs(context.Background(), []string{"p1", "missing", "p2"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, []string{"energized"}, products[0].Tags)
	assert.Equal(t, models.ServeHot, products[0].Temperature)
	assert.Equal(t, "p2", products[1].ID)
	assert.Equal(t, []string{"relaxed", "sweet"}, products[1].Tags)
	assert.Equal(t, 250, products[1].WeeklyOrders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductsByIDs_EmptyIDsSkipsQuery(t *testing.T) {
	repo, mock := newMockRepo(t)

	products, err := repo.ProductsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCafesByIDs(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "rating", "review_count", "price_range", "location", "distance", "popular_item"}).
		AddRow("c1", "Bean There", 4.2, 120, "$$", "Main St", "0.4 km", "Flat White")
	mock.ExpectQuery(`FROM cafes`).WillReturnRows(rows)

	cafes, err := repo.CafesByIDs(context.Background(), []string{"c1"})
	require.NoError(t, err)
	require.Len(t, cafes, 1)
	assert.Equal(t, models.Cafe{
		ID: "c1", Name: "Bean There", Rating: 4.2, ReviewCount: 120,
		PriceRange: "$$", Location: "Main St", Distance: "0.4 km", PopularItem: "Flat White",
	}, cafes[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCafesByIDs_QueryFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM cafes`).WillReturnError(errors.New("connection refused"))

	_, err := repo.CafesByIDs(context.Background(), []string{"c1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CATALOG_LOOKUP_FAILED")
}

func TestReviewsForSubject_DeadlineIsTimeout(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM reviews`).
		WithArgs("cafe-1").
		WillDelayFor(200 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"id", "rating", "comment", "author", "created_at"}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := repo.ReviewsForSubject(ctx, "cafe-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUERY_TIMEOUT")
}

func TestReviewsForSubject(t *testing.T) {
	repo, mock := newMockRepo(t)

	day := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "rating", "comment", "author", "created_at"}).
		AddRow("r2", 5, "Lovely", "ana", day).
		AddRow("r1", 2, "Too bitter", "", day.Add(-48*time.Hour))
	mock.ExpectQuery(`FROM reviews`).WithArgs("cafe-1").WillReturnRows(rows)

	reviews, err := repo.ReviewsForSubject(context.Background(), "cafe-1")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "2024-05-02", reviews[0].Date)
	assert.Equal(t, 2, reviews[1].Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewsForSubject_NoRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM reviews`).WithArgs("cafe-9").
		WillReturnRows(sqlmock.NewRows([]string{"id", "rating", "comment", "author", "created_at"}))

	reviews, err := repo.ReviewsForSubject(context.Background(), "cafe-9")
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}
