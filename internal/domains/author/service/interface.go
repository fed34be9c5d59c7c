package service

import (
	"context"
	"net/url"

	"catalog-backend/internal/domains/author/model"
)

// ServiceInterface - Định nghĩa business logic methods
type ServiceInterface interface {
	ListAuthors(ctx context.Context, params url.Values) ([]model.Author, error)
	GetAuthor(ctx context.Context, id int64) (*model.Author, error)
	CreateAuthor(ctx context.Context, req *model.NewAuthor) (*model.Author, error)
	UpdateAuthor(ctx context.Context, id int64, req *model.Author) (*model.Author, error)
	DeleteAuthor(ctx context.Context, id int64) error
}
