package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

// TitleFilter carries the combinable list filters: category slug, genre slug,
// name substring and exact year.
type TitleFilter struct {
	Category string
	Genre    string
	Name     string
	Year     *int
}

type TitleRepository interface {
	Create(ctx context.Context, t *models.Title, genreIDs []int64) error
	FindByID(ctx context.Context, id int64) (*models.Title, error)
	List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	Update(ctx context.Context, t *models.Title, genreIDs []int64, replaceGenres bool) error
	Delete(ctx context.Context, id int64) error
	AverageScore(ctx context.Context, titleID int64) (*float64, error)
	AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error)
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

// Create inserts the title and its genre association rows in one transaction,
// so a half-linked title never becomes visible.
func (r *titleRepository) Create(ctx context.Context, t *models.Title, genreIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Genres", "Category").Create(t).Error; err != nil {
			return fmt.Errorf("create title: %w", err)
		}
		for _, gid := range genreIDs {
			if err := tx.Create(&models.GenreTitle{TitleID: t.ID, GenreID: gid}).Error; err != nil {
				return fmt.Errorf("link genre: %w", err)
			}
		}
		return nil
	})
}

func (r *titleRepository) FindByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).Preload("Category").Preload("Genres").First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *titleRepository) List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Title{})
	if f.Category != "" {
		q = q.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", f.Category)
	}
	if f.Genre != "" {
		q = q.Joins("JOIN genre_titles gt ON gt.title_id = titles.id").
			Joins("JOIN genres g ON g.id = gt.genre_id").
			Where("g.slug = ?", f.Genre)
	}
	if f.Name != "" {
		q = q.Where("titles.name ILIKE ?", "%"+f.Name+"%")
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}

	if err := q.Distinct("titles.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := q.Distinct().
		Preload("Category").
		Preload("Genres").
		Order("titles.id asc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Update saves the title row and, when replaceGenres is set, rewrites the
// association rows inside the same transaction.
func (r *titleRepository) Update(ctx context.Context, t *models.Title, genreIDs []int64, replaceGenres bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Genres", "Category").Save(t).Error; err != nil {
			return fmt.Errorf("update title: %w", err)
		}
		if !replaceGenres {
			return nil
		}
		if err := tx.Where("title_id = ?", t.ID).Delete(&models.GenreTitle{}).Error; err != nil {
			return fmt.Errorf("unlink genres: %w", err)
		}
		for _, gid := range genreIDs {
			if err := tx.Create(&models.GenreTitle{TitleID: t.ID, GenreID: gid}).Error; err != nil {
				return fmt.Errorf("link genre: %w", err)
			}
		}
		return nil
	})
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AverageScore computes the mean review score at read time. Returns nil when
// the title has no reviews.
func (r *titleRepository) AverageScore(ctx context.Context, titleID int64) (*float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("AVG(score)").
		Where("title_id = ?", titleID).
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	return avg, nil
}

// AverageScores batches the aggregation for a list page. Titles without
// reviews are absent from the map.
func (r *titleRepository) AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	ratings := make(map[int64]float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return ratings, nil
	}

	var rows []struct {
		TitleID int64
		Rating  float64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id, AVG(score) as rating").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		ratings[row.TitleID] = row.Rating
	}
	return ratings, nil
}
