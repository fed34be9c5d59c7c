package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/domains/book/model"
	"catalog-backend/internal/domains/book/service"
	"catalog-backend/internal/shared/middleware"
	"catalog-backend/internal/shared/response"
	"catalog-backend/internal/shared/utils"
	"catalog-backend/internal/shared/validator"
)

type BookHandler struct {
	service service.ServiceInterface
}

func NewBookHandler(svc service.ServiceInterface) *BookHandler {
	return &BookHandler{service: svc}
}

// List godoc
// GET /api/books?author_id=2&genre=fantasy&pub_year=2009
func (h *BookHandler) List(c *gin.Context) {
	books, err := h.service.ListBooks(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		h.handleError(c, err, 0)
		return
	}

	response.Success(c, http.StatusOK, books)
}

// GetByID godoc
// GET /api/books/:id
func (h *BookHandler) GetByID(c *gin.Context) {
	id, ok := utils.PathID(c)
	if !ok {
		return
	}

	b, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, id)
		return
	}

	response.Success(c, http.StatusOK, b)
}

// Create godoc
// POST /api/books
func (h *BookHandler) Create(c *gin.Context) {
	var req model.NewBook
	if !utils.BindAndValidate(c, model.NewBookSchema, &req) {
		return
	}

	b, err := h.service.CreateBook(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err, 0)
		return
	}

	response.Success(c, http.StatusCreated, b)
}

// Update godoc
// PUT /api/books/:id
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := utils.PathID(c)
	if !ok {
		return
	}

	var req model.Book
	if !utils.BindAndValidate(c, model.BookSchema, &req) {
		return
	}

	b, err := h.service.UpdateBook(c.Request.Context(), id, &req)
	if err != nil {
		h.handleError(c, err, id)
		return
	}

	response.Success(c, http.StatusCreated, b)
}

// Delete godoc
// DELETE /api/books/:id
func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := utils.PathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), id); err != nil {
		h.handleError(c, err, id)
		return
	}

	response.NoContent(c)
}

func (h *BookHandler) handleError(c *gin.Context, err error, id int64) {
	var verr *validator.ValidationError

	switch {
	case errors.As(err, &verr):
		response.Validation(c, verr.Violations)

	// author_id không resolve được
	case errors.Is(err, model.ErrAuthorNotFound):
		response.Integrity(c, http.StatusBadRequest, model.ErrAuthorNotFound.Error())

	case errors.Is(err, model.ErrBookNotFound):
		response.NotFound(c, model.NotFoundMessage(id))

	default:
		log.Error().Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("book request failed")
		response.InternalServerError(c)
	}
}
