package service

import (
	"errors"
	"strings"
	"testing"

	"reviewhub/internal/api/apperr"
	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newTestUserService(userRepo *MockUserRepository, reviewRepo *MockReviewRepository) UserService {
	return NewUserService(userRepo, reviewRepo, nil)
}

func TestUpdateUser_LongUsernameRejected(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	userService := newTestUserService(mockUserRepo, new(MockReviewRepository))

	stored := &models.User{ID: "user-1", Username: "reader", Email: "reader@example.com"}
	mockUserRepo.On("FindByUsername", "reader").Return(stored, nil)

	long := strings.Repeat("a", 151)
	_, err := userService.UpdateByUsername("reader", dto.UpdateUserRequest{Username: &long})

	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Contains(t, err.Error(), "150")
	mockUserRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestUpdateUser_LongEmailRejected(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	userService := newTestUserService(mockUserRepo, new(MockReviewRepository))

	stored := &models.User{ID: "user-1", Username: "reader", Email: "reader@example.com"}
	mockUserRepo.On("FindByUsername", "reader").Return(stored, nil)

	long := strings.Repeat("a", 250) + "@example.com"
	_, err := userService.UpdateByUsername("reader", dto.UpdateUserRequest{Email: &long})

	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Contains(t, err.Error(), "254")
	mockUserRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestUpdateUser_EmailMatchingStoredUsernameRejected(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	userService := newTestUserService(mockUserRepo, new(MockReviewRepository))

	stored := &models.User{ID: "user-1", Username: "reader", Email: "reader@example.com"}
	mockUserRepo.On("FindByUsername", "reader").Return(stored, nil)

	// patching only the email must still run the pair validation
	email := "reader"
	_, err := userService.UpdateByUsername("reader", dto.UpdateUserRequest{Email: &email})

	assert.True(t, errors.Is(err, apperr.ErrValidation))
	mockUserRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestUpdateUser_ValidPatchApplies(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	userService := newTestUserService(mockUserRepo, new(MockReviewRepository))

	stored := &models.User{ID: "user-1", Username: "reader", Email: "reader@example.com"}
	mockUserRepo.On("FindByUsername", "reader").Return(stored, nil)
	mockUserRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil)

	email := "new@example.com"
	resp, err := userService.UpdateByUsername("reader", dto.UpdateUserRequest{Email: &email})

	assert.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.Email)
	mockUserRepo.AssertExpectations(t)
}

func TestDeleteUser_CollectsReviewedTitlesBeforeDelete(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockReviewRepo := new(MockReviewRepository)
	userService := newTestUserService(mockUserRepo, mockReviewRepo)

	stored := &models.User{ID: "user-1", Username: "reader", Email: "reader@example.com"}
	mockUserRepo.On("FindByUsername", "reader").Return(stored, nil)
	// the DB cascade will remove reviews on these titles, so their cached
	// ratings must be dropped
	mockReviewRepo.On("TitleIDsByAuthor", "user-1").Return([]int64{3, 7}, nil)
	mockUserRepo.On("DeleteByUsername", "reader").Return(nil)

	err := userService.DeleteByUsername("reader")

	assert.NoError(t, err)
	mockReviewRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestDeleteUser_Unknown(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockReviewRepo := new(MockReviewRepository)
	userService := newTestUserService(mockUserRepo, mockReviewRepo)

	mockUserRepo.On("FindByUsername", "ghost").Return(nil, gorm.ErrRecordNotFound)

	err := userService.DeleteByUsername("ghost")

	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	mockUserRepo.AssertNotCalled(t, "DeleteByUsername", mock.Anything)
	mockReviewRepo.AssertNotCalled(t, "TitleIDsByAuthor", mock.Anything)
}

func TestCreateUser_UnknownRoleRejected(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	userService := newTestUserService(mockUserRepo, new(MockReviewRepository))

	_, err := userService.Create(dto.CreateUserRequest{
		Username: "reader",
		Email:    "reader@example.com",
		Role:     "root",
	})

	assert.True(t, errors.Is(err, apperr.ErrValidation))
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything)
}
