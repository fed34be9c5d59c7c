package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"catalog-backend/internal/domains/user/model"
	"catalog-backend/internal/domains/user/repository"
	"catalog-backend/internal/shared/validator"
	"catalog-backend/pkg/logger"
)

type userService struct {
	users    repository.RepositoryInterface
	sessions repository.SessionRepository
	hasher   PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(
	users repository.RepositoryInterface,
	sessions repository.SessionRepository,
	hasher PasswordHasher,
) ServiceInterface {
	return &userService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
	}
}

// Signup tạo user mới, không tự login
func (s *userService) Signup(ctx context.Context, req model.Credentials) error {
	if err := validateCredentials(req); err != nil {
		return err
	}

	exists, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return err
	}
	if exists {
		return model.ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// Signup đồng thời cùng username: unique constraint trả về ErrUsernameTaken
	if _, err := s.users.CreateUser(ctx, req.Username, hash); err != nil {
		return err
	}

	logger.Info("user signed up", map[string]interface{}{"username": req.Username})
	return nil
}

// Login: user không tồn tại và sai password trả cùng một lỗi
// và tốn cùng một lần argon2
func (s *userService) Login(ctx context.Context, req model.Credentials) (string, error) {
	if err := validateCredentials(req); err != nil {
		return "", err
	}

	u, err := s.users.FindByUsername(ctx, req.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		_, _ = s.hasher.Verify(req.Password, s.dummy())
		logger.Warn("login failed", map[string]interface{}{"username": req.Username, "reason": "unknown user"})
		return "", model.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	ok, err := s.hasher.Verify(req.Password, u.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		logger.Warn("login failed", map[string]interface{}{"username": req.Username, "reason": "wrong password"})
		return "", model.ErrInvalidCredentials
	}

	// Mỗi lần login mint token mới, session cũ vẫn còn hiệu lực
	token, err := generateSessionToken()
	if err != nil {
		return "", err
	}
	if _, err := s.sessions.CreateSession(ctx, u.Username, hashToken(token)); err != nil {
		return "", err
	}

	logger.Info("user logged in", map[string]interface{}{"username": u.Username})
	return token, nil
}

func (s *userService) CheckSession(ctx context.Context, token string) (string, error) {
	username, ok, err := s.ResolveSession(ctx, token)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", model.ErrUnauthorized
	}
	return username, nil
}

// ResolveSession implement middleware.SessionResolver
func (s *userService) ResolveSession(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}

	username, err := s.sessions.FindUsername(ctx, hashToken(token))
	if errors.Is(err, model.ErrSessionNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return username, true, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	deleted, err := s.sessions.DeleteSession(ctx, hashToken(token))
	if err != nil {
		return err
	}
	if deleted {
		logger.Info("user logged out", nil)
	}
	return nil
}

// dummy là hash của một password ngẫu nhiên, dùng khi user không tồn tại
func (s *userService) dummy() string {
	s.dummyOnce.Do(func() {
		token, err := generateSessionToken()
		if err == nil {
			s.dummyHash, err = s.hasher.Hash(token)
		}
		if err != nil {
			logger.Error("failed to prepare dummy password hash", err)
		}
	})
	return s.dummyHash
}

// validateCredentials chuyển lỗi ozzo sang ValidationError
func validateCredentials(req model.Credentials) error {
	err := req.Validate()
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	violations := make([]string, 0, len(fieldErrs))
	for field, ferr := range fieldErrs {
		violations = append(violations, fmt.Sprintf("%q: %s", field, ferr.Error()))
	}
	return validator.NewError(violations...)
}
