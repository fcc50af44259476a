package repository

import (
	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(review *models.Review) error
	FindByID(titleID, id int64) (*models.Review, error)
	ListByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error)
	Update(review *models.Review) error
	Delete(id int64) error
	TitleIDsByAuthor(authorID string) ([]int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create relies on the (title_id, author_id) unique index to reject a second
// review; two concurrent inserts for the same pair cannot both succeed.
func (r *reviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

func (r *reviewRepository) FindByID(titleID, id int64) (*models.Review, error) {
	var review models.Review
	err := r.db.Where("title_id = ?", titleID).
		Preload("Author").
		First(&review, id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByTitle returns reviews oldest first.
func (r *reviewRepository) ListByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// TitleIDsByAuthor returns the distinct titles the user has reviewed. Callers
// deleting the user need the list to drop the affected cached ratings.
func (r *reviewRepository) TitleIDsByAuthor(authorID string) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&models.Review{}).
		Where("author_id = ?", authorID).
		Distinct().
		Pluck("title_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *reviewRepository) Update(review *models.Review) error {
	return r.db.Save(review).Error
}

func (r *reviewRepository) Delete(id int64) error {
	result := r.db.Delete(&models.Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
