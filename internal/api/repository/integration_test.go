package repository

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"reviewhub/database"
	"reviewhub/internal/api/apperr"
	"reviewhub/internal/api/models"
	"reviewhub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testDB connects to the database named by TEST_DATABASE_URL, migrates the
// schema and truncates every table. Tests that need real constraint and
// cascade behaviour run against it; without the variable they skip.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := database.ConnectDB(&config.Config{DatabaseURL: url, GoEnv: "test"}, logger)
	require.NoError(t, err)

	err = db.Exec("TRUNCATE comments, reviews, genre_titles, titles, genres, categories, users RESTART IDENTITY CASCADE").Error
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedTitle(t *testing.T, db *gorm.DB, name string) *models.Title {
	t.Helper()
	title := &models.Title{Name: name, Year: 1999}
	require.NoError(t, db.Create(title).Error)
	return title
}

func TestReviewListOldestFirst(t *testing.T) {
	db := testDB(t)
	repo := NewReviewRepository(db)
	title := seedTitle(t, db, "Ordered")
	first := seedUser(t, db, "first")
	second := seedUser(t, db, "second")

	// insert the newer review first so insertion order cannot mask the sort
	newer := &models.Review{TitleID: title.ID, AuthorID: second.ID, Text: "newer", Score: 8,
		PubDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Create(newer))
	older := &models.Review{TitleID: title.ID, AuthorID: first.ID, Text: "older", Score: 4,
		PubDate: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Create(older))

	reviews, total, err := repo.ListByTitle(title.ID, 1, 10)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, reviews, 2)
	assert.Equal(t, "older", reviews[0].Text)
	assert.Equal(t, "newer", reviews[1].Text)
}

func TestCommentListNewestFirst(t *testing.T) {
	db := testDB(t)
	commentRepo := NewCommentRepository(db)
	title := seedTitle(t, db, "Discussed")
	author := seedUser(t, db, "author")

	review := &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "base", Score: 5}
	require.NoError(t, db.Create(review).Error)

	older := &models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: "older",
		PubDate: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, commentRepo.Create(older))
	newer := &models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: "newer",
		PubDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, commentRepo.Create(newer))

	comments, total, err := commentRepo.ListByReview(review.ID, 1, 10)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, comments, 2)
	assert.Equal(t, "newer", comments[0].Text)
	assert.Equal(t, "older", comments[1].Text)
}

func TestDuplicateReviewRejected(t *testing.T) {
	db := testDB(t)
	repo := NewReviewRepository(db)
	title := seedTitle(t, db, "Popular")
	author := seedUser(t, db, "fan")

	require.NoError(t, repo.Create(&models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "first", Score: 9}))

	err := repo.Create(&models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "second", Score: 2})

	assert.True(t, apperr.IsUniqueViolation(err))
}

func TestDuplicateGenreLinkRejected(t *testing.T) {
	db := testDB(t)
	title := seedTitle(t, db, "Tagged")
	genre := &models.Genre{Name: "Drama", Slug: "drama"}
	require.NoError(t, db.Create(genre).Error)

	require.NoError(t, db.Create(&models.GenreTitle{TitleID: title.ID, GenreID: genre.ID}).Error)

	err := db.Create(&models.GenreTitle{TitleID: title.ID, GenreID: genre.ID}).Error

	assert.True(t, apperr.IsUniqueViolation(err))
}

func TestTitleDeleteCascadesReviewsAndComments(t *testing.T) {
	db := testDB(t)
	title := seedTitle(t, db, "Doomed")
	author := seedUser(t, db, "writer")

	review := &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "gone soon", Score: 7}
	require.NoError(t, db.Create(review).Error)
	comment := &models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: "me too"}
	require.NoError(t, db.Create(comment).Error)

	require.NoError(t, db.Delete(&models.Title{}, title.ID).Error)

	var reviewCount, commentCount int64
	require.NoError(t, db.Model(&models.Review{}).Count(&reviewCount).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&commentCount).Error)
	assert.Zero(t, reviewCount)
	assert.Zero(t, commentCount)
}

func TestUserDeleteCascadesReviews(t *testing.T) {
	db := testDB(t)
	userRepo := NewUserRepository(db)
	reviewRepo := NewReviewRepository(db)
	title := seedTitle(t, db, "Reviewed")
	author := seedUser(t, db, "leaving")

	require.NoError(t, reviewRepo.Create(&models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "bye", Score: 6}))

	ids, err := reviewRepo.TitleIDsByAuthor(author.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{title.ID}, ids)

	require.NoError(t, userRepo.DeleteByUsername("leaving"))

	var count int64
	require.NoError(t, db.Model(&models.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCategoryDeleteClearsTitleCategory(t *testing.T) {
	db := testDB(t)
	categoryRepo := NewCategoryRepository(db)
	category := &models.Category{Name: "Films", Slug: "films"}
	require.NoError(t, db.Create(category).Error)

	title := &models.Title{Name: "Orphaned", Year: 2001, CategoryID: &category.ID}
	require.NoError(t, db.Create(title).Error)

	require.NoError(t, categoryRepo.DeleteBySlug(context.Background(), "films"))

	var reloaded models.Title
	require.NoError(t, db.First(&reloaded, title.ID).Error)
	assert.Nil(t, reloaded.CategoryID)
}
