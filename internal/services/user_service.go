package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"notipayBack/internal/models"
	"notipayBack/internal/repositories"
	"notipayBack/utils"
)

const (
	accessTokenTTL  = 120 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

// UserService is the authentication collaborator: it issues the verified
// (subject, role) identity that every guarded endpoint consumes.
type UserService struct {
	UserRepo     *repositories.UserRepository
	TokenManager *utils.Manager
}

func (s *UserService) SignUp(ctx context.Context, req models.SignUpRequest) (models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return models.User{}, models.ErrInvalidCredentials
	}

	_, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err == nil {
		return models.User{}, models.ErrDuplicateUsername
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		HashedPassword: string(hash),
		Role:           models.RoleUser,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.UserRepo.CreateUser(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (models.Tokens, error) {
	user, err := s.UserRepo.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, models.ErrUserNotFound) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.Tokens{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		return models.Tokens{}, models.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates the session: the presented refresh token is replaced by a
// new one together with a fresh access token.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	session, err := s.UserRepo.GetSessionByToken(ctx, refreshToken)
	if errors.Is(err, models.ErrSessionNotFound) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.Tokens{}, err
	}
	if session.ExpiresAt.Before(time.Now()) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}

	user, err := s.UserRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return models.Tokens{}, err
	}
	return s.issueTokens(ctx, user)
}

func (s *UserService) issueTokens(ctx context.Context, user models.User) (models.Tokens, error) {
	access, err := s.TokenManager.NewAccessToken(user.ID.String(), user.Role, accessTokenTTL)
	if err != nil {
		return models.Tokens{}, err
	}
	refresh, err := s.TokenManager.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}

	session := models.Session{
		UserID:       user.ID,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(refreshTokenTTL),
	}
	if err := s.UserRepo.SaveSession(ctx, session); err != nil {
		return models.Tokens{}, err
	}

	return models.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.UserRepo.ListUsers(ctx)
}

func (s *UserService) UpdateFCMToken(ctx context.Context, userID uuid.UUID, token string) error {
	return s.UserRepo.UpdateFCMToken(ctx, userID, strings.TrimSpace(token))
}
