package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/domains/author/model"
	"catalog-backend/internal/domains/author/service"
	"catalog-backend/internal/shared/middleware"
	"catalog-backend/internal/shared/response"
	"catalog-backend/internal/shared/utils"
	"catalog-backend/internal/shared/validator"
)

type AuthorHandler struct {
	service service.ServiceInterface
}

func NewAuthorHandler(svc service.ServiceInterface) *AuthorHandler {
	return &AuthorHandler{service: svc}
}

// ════════════════════════════════════════════════════════════════
// READ: GET /api/authors?name=...&bio=...
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) List(c *gin.Context) {
	authors, err := h.service.ListAuthors(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		h.handleError(c, err, 0)
		return
	}

	response.Success(c, http.StatusOK, authors)
}

// ════════════════════════════════════════════════════════════════
// READ: GET /api/authors/:id
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) GetByID(c *gin.Context) {
	id, ok := utils.PathID(c)
	if !ok {
		return
	}

	a, err := h.service.GetAuthor(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, id)
		return
	}

	response.Success(c, http.StatusOK, a)
}

// ════════════════════════════════════════════════════════════════
// CREATE: POST /api/authors
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Create(c *gin.Context) {
	var req model.NewAuthor
	if !utils.BindAndValidate(c, model.NewAuthorSchema, &req) {
		return
	}

	a, err := h.service.CreateAuthor(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err, 0)
		return
	}

	response.Success(c, http.StatusCreated, a)
}

// ════════════════════════════════════════════════════════════════
// UPDATE: PUT /api/authors/:id (full replacement)
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Update(c *gin.Context) {
	id, ok := utils.PathID(c)
	if !ok {
		return
	}

	var req model.Author
	if !utils.BindAndValidate(c, model.AuthorSchema, &req) {
		return
	}

	a, err := h.service.UpdateAuthor(c.Request.Context(), id, &req)
	if err != nil {
		h.handleError(c, err, id)
		return
	}

	response.Success(c, http.StatusCreated, a)
}

// ════════════════════════════════════════════════════════════════
// DELETE: DELETE /api/authors/:id
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Delete(c *gin.Context) {
	id, ok := utils.PathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAuthor(c.Request.Context(), id); err != nil {
		h.handleError(c, err, id)
		return
	}

	response.NoContent(c)
}

func (h *AuthorHandler) handleError(c *gin.Context, err error, id int64) {
	var verr *validator.ValidationError

	switch {
	// 400 - body, filter hoặc id không hợp lệ
	case errors.As(err, &verr):
		response.Validation(c, verr.Violations)

	// 403 - còn books tham chiếu
	case errors.Is(err, model.ErrAuthorHasBooks):
		response.Integrity(c, http.StatusForbidden, model.HasBooksMessage)

	// 404
	case errors.Is(err, model.ErrAuthorNotFound):
		response.NotFound(c, model.NotFoundMessage(id))

	// 500 - log nhưng không expose details cho client
	default:
		log.Error().Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("author request failed")
		response.InternalServerError(c)
	}
}
