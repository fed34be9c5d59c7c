package service

import (
	"context"
	"net/url"

	"catalog-backend/internal/domains/book/model"
	"catalog-backend/internal/domains/book/repository"
	"catalog-backend/internal/shared/validator"
	"catalog-backend/pkg/logger"
)

type bookService struct {
	repo repository.RepositoryInterface
}

func NewBookService(repo repository.RepositoryInterface) ServiceInterface {
	return &bookService{repo: repo}
}

func (s *bookService) ListBooks(ctx context.Context, params url.Values) ([]model.Book, error) {
	filter, err := model.FilterAttributes.Translate(params)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

func (s *bookService) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *bookService) CreateBook(ctx context.Context, req *model.NewBook) (*model.Book, error) {
	b, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.Info("book created", map[string]interface{}{
		"book_id":   b.ID,
		"author_id": b.AuthorID,
	})
	return b, nil
}

func (s *bookService) UpdateBook(ctx context.Context, id int64, req *model.Book) (*model.Book, error) {
	if req.ID != id {
		return nil, validator.FieldError("id", "must match the id in the path")
	}
	return s.repo.Update(ctx, req)
}

func (s *bookService) DeleteBook(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("book deleted", map[string]interface{}{"book_id": id})
	return nil
}
