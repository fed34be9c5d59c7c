package service

import (
	"context"

	"catalog-backend/internal/domains/user/model"
)

// ServiceInterface - Auth service: signup, login, session check, logout
type ServiceInterface interface {
	Signup(ctx context.Context, req model.Credentials) error
	// Login trả về token gốc để set vào cookie
	Login(ctx context.Context, req model.Credentials) (string, error)
	// CheckSession: ErrUnauthorized nếu token rỗng hoặc không tồn tại
	CheckSession(ctx context.Context, token string) (string, error)
	ResolveSession(ctx context.Context, token string) (string, bool, error)
	// Logout không lỗi với token không tồn tại
	Logout(ctx context.Context, token string) error
}
