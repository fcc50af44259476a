package service

import (
	"errors"

	"reviewhub/internal/api/apperr"
	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/permissions"
	"reviewhub/internal/api/repository"

	"gorm.io/gorm"
)

type CommentService interface {
	ListByReview(titleID, reviewID int64, page, pageSize int) ([]dto.CommentResponse, int64, error)
	Get(titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(requester *models.User, titleID, reviewID int64, in dto.CreateCommentRequest) (*dto.CommentResponse, error)
	Update(requester *models.User, titleID, reviewID, commentID int64, in dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	Delete(requester *models.User, titleID, reviewID, commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

// ensureReview checks the review exists under the given title.
func (s *commentService) ensureReview(titleID, reviewID int64) error {
	_, err := s.reviewRepo.FindByID(titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("review %d", reviewID)
		}
		return err
	}
	return nil
}

func (s *commentService) ListByReview(titleID, reviewID int64, page, pageSize int) ([]dto.CommentResponse, int64, error) {
	if err := s.ensureReview(titleID, reviewID); err != nil {
		return nil, 0, err
	}

	comments, total, err := s.commentRepo.ListByReview(reviewID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, *dto.FromModelToCommentResponse(&comments[i]))
	}
	return resp, total, nil
}

func (s *commentService) Get(titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	if err := s.ensureReview(titleID, reviewID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.FindByID(reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("comment %d", commentID)
		}
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Create(requester *models.User, titleID, reviewID int64, in dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if err := s.ensureReview(titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: requester.ID,
		Text:     in.Text,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	// Reload with author data
	comment, err := s.commentRepo.FindByID(reviewID, comment.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Update(requester *models.User, titleID, reviewID, commentID int64, in dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	if err := s.ensureReview(titleID, reviewID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.FindByID(reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("comment %d", commentID)
		}
		return nil, err
	}

	if !permissions.CanMutateObject(requester, comment.AuthorID) {
		return nil, apperr.Deniedf("you may not modify another user's comment")
	}

	if in.Text != nil {
		comment.Text = *in.Text
	}
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}

	comment, err = s.commentRepo.FindByID(reviewID, commentID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Delete(requester *models.User, titleID, reviewID, commentID int64) error {
	if err := s.ensureReview(titleID, reviewID); err != nil {
		return err
	}

	comment, err := s.commentRepo.FindByID(reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("comment %d", commentID)
		}
		return err
	}

	if !permissions.CanMutateObject(requester, comment.AuthorID) {
		return apperr.Deniedf("you may not delete another user's comment")
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		return apperr.Translate(err, "comment")
	}
	return nil
}
