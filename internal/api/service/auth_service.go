package service

import (
	"errors"
	"log/slog"
	"regexp"
	"time"

	"reviewhub/internal/api/apperr"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/config"
	"reviewhub/internal/mail"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// reservedUsername can never be registered; it is the self-service route.
const reservedUsername = "me"

// word characters plus . @ + -
var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// Claims carried by the access token. Access-only, no refresh flow.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Signup(email, username string) (*models.User, error)
	ObtainToken(username, confirmationCode string) (string, error)
	Authenticate(tokenString string) (*models.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	sender    mail.Sender
	logger    *slog.Logger
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, sender mail.Sender, logger *slog.Logger, cfg *config.Config) AuthService {
	return &authService{
		userRepo:  userRepo,
		sender:    sender,
		logger:    logger,
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.AccessTokenTTL,
	}
}

// ValidateUsername enforces the registration constraints shared by signup and
// the admin user directory: reserved value, username != email, charset.
func ValidateUsername(username, email string) error {
	if username == reservedUsername {
		return apperr.Validationf("username %q is reserved", reservedUsername)
	}
	if len(username) > 150 {
		return apperr.Validationf("username must be at most 150 characters")
	}
	if username == email {
		return apperr.Validationf("email and username must not match")
	}
	if !usernameRe.MatchString(username) {
		return apperr.Validationf("username may only contain letters, digits and @/./+/-")
	}
	return nil
}

// Signup registers a user and dispatches the confirmation code. A repeated
// signup with the identical (email, username) pair is idempotent: the stored
// user is reused and its code re-sent.
func (s *authService) Signup(email, username string) (*models.User, error) {
	if err := ValidateUsername(username, email); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmailAndUsername(email, username)
	switch {
	case err == nil:
		// exact pair already registered, resend the stored code
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &models.User{
			Email:    email,
			Username: username,
			Role:     models.RoleUser,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, apperr.Translate(err, "username or email already in use")
		}
	default:
		return nil, err
	}

	if err := s.sender.Send(user.Email, "reviewhub registration", "confirmation_code: "+user.ConfirmationCode); err != nil {
		// delivery failure must not lose the registration
		s.logger.Warn("confirmation mail failed", "username", user.Username, "error", err)
	}
	return user, nil
}

// ObtainToken exchanges a confirmation code for a signed access token.
func (s *authService) ObtainToken(username, confirmationCode string) (string, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFoundf("user %q", username)
		}
		return "", err
	}

	if confirmationCode != user.ConfirmationCode {
		return "", apperr.Validationf("invalid confirmation code")
	}

	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// Authenticate validates a bearer token and loads the current user record, so
// role changes take effect on the next request rather than at the next login.
func (s *authService) Authenticate(tokenString string) (*models.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthenticatedf("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, apperr.Unauthenticatedf("invalid token")
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, apperr.Unauthenticatedf("unknown user")
	}
	return user, nil
}
