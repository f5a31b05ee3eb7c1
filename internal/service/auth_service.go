package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"exeat-backend/internal/model"
	"exeat-backend/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRefreshExpired     = errors.New("refresh token expired or revoked")
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// --- DTOs ---

type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Role       string `json:"role" binding:"required"`
	StudentID  string `json:"student_id"`
	Department string `json:"department"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse returns account data without the password hash.
type UserResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	StudentID  string `json:"student_id,omitempty"`
	Department string `json:"department,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type LoginResponse struct {
	User   UserResponse `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

// --- Interface ---

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Logout(ctx context.Context, refreshToken string)
	GetUser(ctx context.Context, id string) (UserResponse, error)
}

type authService struct {
	users  store.UserStore
	logger *zap.Logger
	secret []byte
	now    func() time.Time
}

// jwtSecret resolves the signing key from the environment with the same
// development fallback the middleware uses.
func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key" // development fallback only
	}
	return []byte(secret)
}

// NewAuthService returns the authentication service over the in-memory
// account directory.
func NewAuthService(users store.UserStore, logger *zap.Logger) AuthService {
	return &authService{
		users:  users,
		logger: logger,
		secret: jwtSecret(),
		now:    time.Now,
	}
}

// --- Implementation ---

func (s *authService) Register(ctx context.Context, req RegisterRequest) (UserResponse, error) {
	if !model.ValidRole(req.Role) {
		return UserResponse{}, &ValidationError{Field: "role", Message: "unknown role"}
	}
	if !emailRegex.MatchString(req.Email) {
		return UserResponse{}, &ValidationError{Field: "email", Message: "invalid email format"}
	}
	if req.Role == model.RoleStudent && req.StudentID == "" {
		return UserResponse{}, &ValidationError{Field: "student_id", Message: "student accounts require a student id"}
	}

	if _, err := s.users.GetByEmail(req.Email); err == nil {
		return UserResponse{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:         uuid.New(),
		Name:       req.Name,
		Email:      req.Email,
		Password:   string(hash),
		Role:       req.Role,
		StudentID:  req.StudentID,
		Department: req.Department,
		CreatedAt:  s.now(),
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			return UserResponse{}, ErrEmailTaken
		}
		return UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("email", user.Email),
		zap.String("role", user.Role))
	return toUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	user, err := s.users.GetByEmail(req.Email)
	if err != nil {
		return LoginResponse{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return LoginResponse{}, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return LoginResponse{}, err
	}

	s.logger.Info("user logged in",
		zap.String("email", user.Email),
		zap.String("role", user.Role))
	return LoginResponse{User: toUserResponse(user), Tokens: tokens}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	stored, err := s.users.GetRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrRefreshExpired
	}
	if s.now().After(stored.ExpiresAt) {
		_ = s.users.DeleteRefreshToken(refreshToken)
		return TokenPair{}, ErrRefreshExpired
	}

	user, err := s.users.GetByID(stored.UserID)
	if err != nil {
		return TokenPair{}, ErrRefreshExpired
	}

	// Rotate: the presented token is single-use.
	_ = s.users.DeleteRefreshToken(refreshToken)
	return s.issueTokens(user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	if stored, err := s.users.GetRefreshToken(refreshToken); err == nil {
		s.users.DeleteRefreshTokensForUser(stored.UserID)
	}
}

func (s *authService) GetUser(ctx context.Context, id string) (UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return UserResponse{}, fmt.Errorf("invalid user id: %w", err)
	}
	user, err := s.users.GetByID(userID)
	if err != nil {
		return UserResponse{}, fmt.Errorf("user %s: %w", id, err)
	}
	return toUserResponse(user), nil
}

// issueTokens signs a short-lived access token carrying the claims the
// role middleware reads, plus an opaque single-use refresh token.
func (s *authService) issueTokens(user model.User) (TokenPair, error) {
	now := s.now()
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        user.ID.String(),
		"role":       user.Role,
		"name":       user.Name,
		"student_id": user.StudentID,
		"iat":        now.Unix(),
		"exp":        now.Add(accessTokenTTL).Unix(),
	})
	signed, err := access.SignedString(s.secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh := model.RefreshToken{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(refreshTokenTTL),
		CreatedAt: now,
	}
	if err := s.users.SaveRefreshToken(refresh); err != nil {
		return TokenPair{}, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return TokenPair{AccessToken: signed, RefreshToken: refresh.Token}, nil
}

func toUserResponse(user model.User) UserResponse {
	return UserResponse{
		ID:         user.ID.String(),
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		StudentID:  user.StudentID,
		Department: user.Department,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}
}
