package service

import (
	"context"
	"net/url"

	"catalog-backend/internal/domains/author/model"
	"catalog-backend/internal/domains/author/repository"
	"catalog-backend/internal/shared/validator"
	"catalog-backend/pkg/logger"
)

type authorService struct {
	repo repository.RepositoryInterface
}

func NewAuthorService(repo repository.RepositoryInterface) ServiceInterface {
	return &authorService{repo: repo}
}

// ListAuthors dịch query params qua allow-list rồi query
// Param lạ hoặc lặp lại trả về *validator.ValidationError
func (s *authorService) ListAuthors(ctx context.Context, params url.Values) ([]model.Author, error) {
	filter, err := model.FilterAttributes.Translate(params)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

func (s *authorService) GetAuthor(ctx context.Context, id int64) (*model.Author, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *authorService) CreateAuthor(ctx context.Context, req *model.NewAuthor) (*model.Author, error) {
	a, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.Info("author created", map[string]interface{}{"author_id": a.ID})
	return a, nil
}

// UpdateAuthor: id trong body phải khớp id trên path
func (s *authorService) UpdateAuthor(ctx context.Context, id int64, req *model.Author) (*model.Author, error) {
	if req.ID != id {
		return nil, validator.FieldError("id", "must match the id in the path")
	}
	return s.repo.Update(ctx, req)
}

func (s *authorService) DeleteAuthor(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("author deleted", map[string]interface{}{"author_id": id})
	return nil
}
