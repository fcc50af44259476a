package service

import (
	"context"
	"errors"

	"reviewhub/internal/api/apperr"
	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/permissions"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/cache"

	"gorm.io/gorm"
)

type ReviewService interface {
	ListByTitle(titleID int64, page, pageSize int) ([]dto.ReviewResponse, int64, error)
	Get(titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(requester *models.User, titleID int64, in dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	Update(requester *models.User, titleID, reviewID int64, in dto.UpdateReviewRequest) (*dto.ReviewResponse, error)
	Delete(requester *models.User, titleID, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
	ratings    *cache.RatingCache
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository, ratings *cache.RatingCache) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
		ratings:    ratings,
	}
}

func validateScore(score int) error {
	if score < 1 {
		return apperr.Validationf("score must not be less than 1")
	}
	if score > 10 {
		return apperr.Validationf("score must not be greater than 10")
	}
	return nil
}

func (s *reviewService) ensureTitle(titleID int64) error {
	_, err := s.titleRepo.FindByID(context.Background(), titleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("title %d", titleID)
		}
		return err
	}
	return nil
}

func (s *reviewService) ListByTitle(titleID int64, page, pageSize int) ([]dto.ReviewResponse, int64, error) {
	if err := s.ensureTitle(titleID); err != nil {
		return nil, 0, err
	}

	reviews, total, err := s.reviewRepo.ListByTitle(titleID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		resp = append(resp, *dto.FromModelToReviewResponse(&reviews[i]))
	}
	return resp, total, nil
}

func (s *reviewService) Get(titleID, reviewID int64) (*dto.ReviewResponse, error) {
	if err := s.ensureTitle(titleID); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.FindByID(titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("review %d", reviewID)
		}
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

// Create posts the requester's review. The (title, author) unique constraint
// is the duplicate guard, so a concurrent second attempt fails here instead
// of slipping past a read-then-write check.
func (s *reviewService) Create(requester *models.User, titleID int64, in dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if err := validateScore(in.Score); err != nil {
		return nil, err
	}
	if err := s.ensureTitle(titleID); err != nil {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: requester.ID,
		Text:     in.Text,
		Score:    in.Score,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, apperr.Translate(err, "you have already reviewed this title")
	}

	s.ratings.Invalidate(context.Background(), titleID)

	// Reload with author data
	review, err := s.reviewRepo.FindByID(titleID, review.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Update(requester *models.User, titleID, reviewID int64, in dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.FindByID(titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("review %d", reviewID)
		}
		return nil, err
	}

	if !permissions.CanMutateObject(requester, review.AuthorID) {
		return nil, apperr.Deniedf("you may not modify another user's review")
	}

	if in.Score != nil {
		if err := validateScore(*in.Score); err != nil {
			return nil, err
		}
		review.Score = *in.Score
	}
	if in.Text != nil {
		review.Text = *in.Text
	}

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	s.ratings.Invalidate(context.Background(), titleID)

	review, err = s.reviewRepo.FindByID(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Delete(requester *models.User, titleID, reviewID int64) error {
	review, err := s.reviewRepo.FindByID(titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("review %d", reviewID)
		}
		return err
	}

	if !permissions.CanMutateObject(requester, review.AuthorID) {
		return apperr.Deniedf("you may not delete another user's review")
	}

	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return apperr.Translate(err, "review")
	}
	s.ratings.Invalidate(context.Background(), titleID)
	return nil
}
