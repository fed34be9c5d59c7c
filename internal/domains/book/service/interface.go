package service

import (
	"context"
	"net/url"

	"catalog-backend/internal/domains/book/model"
)

// ServiceInterface - Định nghĩa business logic methods
type ServiceInterface interface {
	ListBooks(ctx context.Context, params url.Values) ([]model.Book, error)
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	CreateBook(ctx context.Context, req *model.NewBook) (*model.Book, error)
	UpdateBook(ctx context.Context, id int64, req *model.Book) (*model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}
