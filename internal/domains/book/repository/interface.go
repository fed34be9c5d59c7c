package repository

import (
	"context"

	"catalog-backend/internal/domains/book/model"
	"catalog-backend/internal/shared/query"
)

// RepositoryInterface - Định nghĩa data access methods
type RepositoryInterface interface {
	List(ctx context.Context, filter query.Filter) ([]model.Book, error)
	GetByID(ctx context.Context, id int64) (*model.Book, error)
	// Create: ErrAuthorNotFound nếu author_id không tồn tại
	Create(ctx context.Context, b *model.NewBook) (*model.Book, error)
	// Update: ErrBookNotFound hoặc ErrAuthorNotFound
	Update(ctx context.Context, b *model.Book) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
}
