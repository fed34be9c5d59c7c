package repository

import (
	"context"

	"catalog-backend/internal/domains/user/model"
)

// RepositoryInterface - Credential store (bảng users)
type RepositoryInterface interface {
	// CreateUser: ErrUsernameTaken nếu username đã tồn tại (kể cả khi signup đồng thời)
	CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// SessionRepository - Session store (bảng sessions + Redis cache)
type SessionRepository interface {
	CreateSession(ctx context.Context, username, tokenHash string) (*model.Session, error)
	// FindUsername: ErrSessionNotFound nếu token hash không tồn tại
	FindUsername(ctx context.Context, tokenHash string) (string, error)
	// DeleteSession trả về false nếu không có session nào bị xóa
	DeleteSession(ctx context.Context, tokenHash string) (bool, error)
}
