package repository

import (
	"context"

	"catalog-backend/internal/domains/author/model"
	"catalog-backend/internal/shared/query"
)

// RepositoryInterface - Định nghĩa data access methods
type RepositoryInterface interface {
	List(ctx context.Context, filter query.Filter) ([]model.Author, error)
	GetByID(ctx context.Context, id int64) (*model.Author, error)
	Create(ctx context.Context, a *model.NewAuthor) (*model.Author, error)
	// Update ghi đè toàn bộ record, ErrAuthorNotFound nếu id không tồn tại
	Update(ctx context.Context, a *model.Author) (*model.Author, error)
	// Delete lock author, từ chối nếu còn book tham chiếu (ErrAuthorHasBooks)
	Delete(ctx context.Context, id int64) error
}
