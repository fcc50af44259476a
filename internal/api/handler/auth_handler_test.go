package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/internal/api/apperr"
	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(email, username string) (*models.User, error) {
	args := m.Called(email, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) ObtainToken(username, confirmationCode string) (string, error) {
	args := m.Called(username, confirmationCode)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Authenticate(tokenString string) (*models.User, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func postJSON(router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignup_Success(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := setupRouter()
	NewAuthHandler(mockAuthService).RegisterRoutes(router.Group("/auth"))

	user := &models.User{Email: "reader@example.com", Username: "reader"}
	mockAuthService.On("Signup", "reader@example.com", "reader").Return(user, nil)

	w := postJSON(router, "/auth/signup", dto.SignupRequest{
		Email:    "reader@example.com",
		Username: "reader",
	})

	// signup stays 200 even on a repeated identical pair
	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.SignupResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "reader@example.com", response.Email)
	assert.Equal(t, "reader", response.Username)
	mockAuthService.AssertExpectations(t)
}

func TestSignup_MissingEmail(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := setupRouter()
	NewAuthHandler(mockAuthService).RegisterRoutes(router.Group("/auth"))

	w := postJSON(router, "/auth/signup", map[string]string{"username": "reader"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockAuthService.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

func TestSignup_ReservedUsername(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := setupRouter()
	NewAuthHandler(mockAuthService).RegisterRoutes(router.Group("/auth"))

	mockAuthService.On("Signup", "me@example.com", "me").
		Return(nil, apperr.Validationf("username %q is reserved", "me"))

	w := postJSON(router, "/auth/signup", dto.SignupRequest{
		Email:    "me@example.com",
		Username: "me",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToken_Success(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := setupRouter()
	NewAuthHandler(mockAuthService).RegisterRoutes(router.Group("/auth"))

	mockAuthService.On("ObtainToken", "reader", "code-123").Return("signed.jwt.token", nil)

	w := postJSON(router, "/auth/token", dto.TokenRequest{
		Username:         "reader",
		ConfirmationCode: "code-123",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.TokenResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "signed.jwt.token", response.Token)
}

func TestToken_UnknownUser(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := setupRouter()
	NewAuthHandler(mockAuthService).RegisterRoutes(router.Group("/auth"))

	mockAuthService.On("ObtainToken", "ghost", "code-123").
		Return("", apperr.NotFoundf("user %q", "ghost"))

	w := postJSON(router, "/auth/token", dto.TokenRequest{
		Username:         "ghost",
		ConfirmationCode: "code-123",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToken_WrongCode(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := setupRouter()
	NewAuthHandler(mockAuthService).RegisterRoutes(router.Group("/auth"))

	mockAuthService.On("ObtainToken", "reader", "wrong").
		Return("", apperr.Validationf("invalid confirmation code"))

	w := postJSON(router, "/auth/token", dto.TokenRequest{
		Username:         "reader",
		ConfirmationCode: "wrong",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
