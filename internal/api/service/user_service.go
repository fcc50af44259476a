package service

import (
	"context"
	"errors"

	"reviewhub/internal/api/apperr"
	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/cache"

	"gorm.io/gorm"
)

type UserService interface {
	List(search string, page, pageSize int) ([]dto.UserResponse, int64, error)
	Create(in dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByUsername(username string) (*dto.UserResponse, error)
	UpdateByUsername(username string, in dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteByUsername(username string) error
	UpdateSelf(user *models.User, in dto.UpdateSelfRequest) (*dto.UserResponse, error)
}

type userService struct {
	userRepo   repository.UserRepository
	reviewRepo repository.ReviewRepository
	ratings    *cache.RatingCache
}

func NewUserService(userRepo repository.UserRepository, reviewRepo repository.ReviewRepository, ratings *cache.RatingCache) UserService {
	return &userService{
		userRepo:   userRepo,
		reviewRepo: reviewRepo,
		ratings:    ratings,
	}
}

func (s *userService) List(search string, page, pageSize int) ([]dto.UserResponse, int64, error) {
	users, total, err := s.userRepo.Search(search, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.FromModelToUserResponse(&users[i]))
	}
	return resp, total, nil
}

// Create is the admin-only path and the one place a role may be assigned
// directly.
func (s *userService) Create(in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := ValidateUsername(in.Username, in.Email); err != nil {
		return nil, err
	}
	role := models.RoleUser
	if in.Role != "" {
		role = models.Role(in.Role)
		if !role.Valid() {
			return nil, apperr.Validationf("unknown role %q", in.Role)
		}
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Role:      role,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, apperr.Translate(err, "username or email already in use")
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) GetByUsername(username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user %q", username)
		}
		return nil, err
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateByUsername(username string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user %q", username)
		}
		return nil, err
	}

	// Either field changing re-runs the full pair validation, so a patched
	// email cannot slip past the username==email rule.
	if in.Username != nil || in.Email != nil {
		username := user.Username
		if in.Username != nil {
			username = *in.Username
		}
		email := user.Email
		if in.Email != nil {
			email = *in.Email
		}
		if len(email) > 254 {
			return nil, apperr.Validationf("email must be at most 254 characters")
		}
		if err := ValidateUsername(username, email); err != nil {
			return nil, err
		}
		user.Username = username
		user.Email = email
	}
	if in.Role != nil {
		role := models.Role(*in.Role)
		if !role.Valid() {
			return nil, apperr.Validationf("unknown role %q", *in.Role)
		}
		user.Role = role
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, apperr.Translate(err, "username or email already in use")
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

// DeleteByUsername removes the user; the DB cascades their reviews and
// comments. The cascade is a review mutation, so the cached rating of every
// title the user reviewed is invalidated once the delete lands.
func (s *userService) DeleteByUsername(username string) error {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("user %q", username)
		}
		return err
	}

	titleIDs, err := s.reviewRepo.TitleIDsByAuthor(user.ID)
	if err != nil {
		return err
	}

	if err := s.userRepo.DeleteByUsername(username); err != nil {
		return apperr.Translate(err, "user "+username)
	}

	ctx := context.Background()
	for _, id := range titleIDs {
		s.ratings.Invalidate(ctx, id)
	}
	return nil
}

// UpdateSelf applies the profile fields a user may change about themselves.
// Email and role stay pinned to the stored values even when submitted.
func (s *userService) UpdateSelf(user *models.User, in dto.UpdateSelfRequest) (*dto.UserResponse, error) {
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}
