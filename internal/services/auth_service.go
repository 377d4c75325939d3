package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodstore/internal/models"
	"foodstore/internal/repositories"
	apperrors "foodstore/pkg/errors"
	"foodstore/pkg/metrics"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// SessionTTL is how long an issued token stays valid.
const SessionTTL = 7 * 24 * time.Hour

const (
	msgMissingSignupFields = "Please provide username, email, and password"
	msgUserExists          = "User with this email or username already exists"
	msgInvalidCredentials  = "Invalid credentials"
	msgNoToken             = "Access denied. No token provided."
	msgInvalidToken        = "Invalid token"
	msgTokenExpired        = "Token expired"
	msgUserGone            = "Invalid token. User not found."
	msgAdminOnly           = "Access denied. Admin privileges required."
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID   string
	Username string
	Role     models.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// RegisterInput carries signup fields.
type RegisterInput struct {
	Username string      `validate:"required,min=3,max=20"`
	Email    string      `validate:"required,email"`
	Password string      `validate:"required,min=6"`
	Role     models.Role `validate:"omitempty,oneof=user admin"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo         repositories.UserRepository
	jwtSecret        []byte
	tokenTTL         time.Duration
	allowAdminSignup bool
	metrics          *metrics.StoreMetrics
	validate         *validator.Validate
	now              func() time.Time
}

type AuthOption func(*AuthService)

// WithAdminSignup lets signup requests assign themselves the admin role.
func WithAdminSignup(allow bool) AuthOption {
	return func(s *AuthService) { s.allowAdminSignup = allow }
}

func WithAuthMetrics(m *metrics.StoreMetrics) AuthOption {
	return func(s *AuthService) { s.metrics = m }
}

// WithAuthClock overrides the clock used for token timestamps.
func WithAuthClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, opts ...AuthOption) *AuthService {
	s := &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  SessionTTL,
		validate:  validator.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionTTL returns the lifetime of issued tokens.
func (s *AuthService) SessionTTL() time.Duration {
	return s.tokenTTL
}

// Register creates a customer (or, when allowed, admin) account and issues a session token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.PublicUser, string, error) {
	user, token, err := s.register(ctx, in)
	s.metrics.AuthAttempt("signup", outcome(err))
	return user, token, err
}

func (s *AuthService) register(ctx context.Context, in RegisterInput) (models.PublicUser, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return models.PublicUser{}, "", apperrors.Validation(msgMissingSignupFields)
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if err := s.validate.Struct(in); err != nil {
		return models.PublicUser{}, "", apperrors.Validation(registerValidationMessage(err))
	}
	if in.Role == models.RoleAdmin && !s.allowAdminSignup {
		return models.PublicUser{}, "", apperrors.Forbidden("Admin accounts cannot be created through signup")
	}

	if err := s.ensureAvailable(ctx, in.Username, in.Email); err != nil {
		return models.PublicUser{}, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.PublicUser{}, "", apperrors.Internal(err, "failed to hash password")
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashedPassword),
		Role:     in.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.PublicUser{}, "", apperrors.New(apperrors.CodeConflict, msgUserExists)
		}
		return models.PublicUser{}, "", apperrors.Internal(err, "failed to register user")
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return models.PublicUser{}, "", err
	}
	return user.Public(), token, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	for _, lookup := range []func() (*models.User, error){
		func() (*models.User, error) { return s.userRepo.GetByEmail(ctx, email) },
		func() (*models.User, error) { return s.userRepo.GetByUsername(ctx, username) },
	} {
		existing, err := lookup()
		switch {
		case err == nil && existing != nil:
			return apperrors.New(apperrors.CodeConflict, msgUserExists)
		case err != nil && !errors.Is(err, repositories.ErrNotFound):
			return apperrors.Internal(err, "failed to check existing users")
		}
	}
	return nil
}

// Authenticate checks credentials and issues a session token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (models.PublicUser, string, error) {
	user, token, err := s.authenticate(ctx, email, password)
	s.metrics.AuthAttempt("login", outcome(err))
	return user, token, err
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (models.PublicUser, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return models.PublicUser{}, "", apperrors.Validation("Please provide email and password")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.PublicUser{}, "", apperrors.New(apperrors.CodeInvalidCredentials, msgInvalidCredentials)
		}
		return models.PublicUser{}, "", apperrors.Internal(err, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.PublicUser{}, "", apperrors.New(apperrors.CodeInvalidCredentials, msgInvalidCredentials)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return models.PublicUser{}, "", err
	}
	return user.Public(), token, nil
}

func (s *AuthService) issueToken(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.Internal(err, "failed to generate token")
	}
	return tokenString, nil
}

// VerifySession validates a token and resolves the caller. The role always comes from the
// stored user.
func (s *AuthService) VerifySession(ctx context.Context, tokenString string) (Identity, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Identity{}, apperrors.New(apperrors.CodeUnauthenticated, msgNoToken)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 &&
			validationErr.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorMalformed|jwt.ValidationErrorUnverifiable) == 0 {
			return Identity{}, apperrors.Wrap(apperrors.CodeTokenExpired, err, msgTokenExpired)
		}
		return Identity{}, apperrors.Wrap(apperrors.CodeInvalidToken, err, msgInvalidToken)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, apperrors.New(apperrors.CodeInvalidToken, msgInvalidToken)
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Identity{}, apperrors.New(apperrors.CodeInvalidToken, msgInvalidToken)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Identity{}, apperrors.New(apperrors.CodeInvalidToken, msgUserGone)
		}
		return Identity{}, apperrors.Internal(err, "failed to load session user")
	}
	return Identity{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// RequireRole fails with Forbidden unless identity has role.
func (s *AuthService) RequireRole(identity Identity, role models.Role) error {
	if identity.Role != role {
		if role == models.RoleAdmin {
			return apperrors.Forbidden(msgAdminOnly)
		}
		return apperrors.Forbidden("Access denied")
	}
	return nil
}

// CurrentUser returns the public projection of the session user.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (models.PublicUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.PublicUser{}, apperrors.NotFound("User not found")
		}
		return models.PublicUser{}, apperrors.Internal(err, "failed to load user")
	}
	return user.Public(), nil
}

func registerValidationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid signup data"
	}
	fe := fieldErrs[0]
	switch fe.Field() {
	case "Username":
		return "Username must be between 3 and 20 characters"
	case "Email":
		return "Please provide a valid email"
	case "Password":
		return "Password must be at least 6 characters"
	case "Role":
		return "Role must be either user or admin"
	}
	return "Invalid signup data"
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
