package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cremfish/storefront/internal/models"
	repository "github.com/cremfish/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewReviewRepo(db)
	ctx := context.Background()

	t.Run("CreateReview_Success", func(t *testing.T) {
		// Arrange
		review := &models.Review{
			ID:        uuid.New(),
			ProductID: uuid.New(),
			Author:    "angler42",
			Rating:    5,
			Comment:   "Casts beautifully",
		}

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews`)).
			WithArgs(review.ID, review.ProductID, review.Author, review.Rating, review.Comment).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		// Act
		err := repo.CreateReview(ctx, review)

		// Assert
		require.NoError(t, err)
		assert.False(t, review.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListReviewsByProduct_NewestFirst", func(t *testing.T) {
		// Arrange
		productID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`)).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "author", "rating", "comment", "created_at"}).
				AddRow(uuid.New(), productID, "newer", 4, "solid", now).
				AddRow(uuid.New(), productID, "older", 5, "great", now.Add(-time.Hour)))

		// Act
		reviews, err := repo.ListReviewsByProduct(ctx, productID)

		// Assert
		require.NoError(t, err)
		require.Len(t, reviews, 2)
		assert.Equal(t, "newer", reviews[0].Author)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ProductRatingStats_Success", func(t *testing.T) {
		// Arrange
		productID := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(AVG(rating), 0), COUNT(*)`)).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(4.0, 2))

		// Act
		average, count, err := repo.ProductRatingStats(ctx, productID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 4.0, average)
		assert.Equal(t, 2, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ProductRatingStats_NoReviews", func(t *testing.T) {
		// Arrange
		productID := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(AVG(rating), 0), COUNT(*)`)).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(0.0, 0))

		// Act
		average, count, err := repo.ProductRatingStats(ctx, productID)

		// Assert
		require.NoError(t, err)
		assert.Zero(t, average)
		assert.Zero(t, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
