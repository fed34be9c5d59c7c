package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/domains/user/model"
	"catalog-backend/internal/domains/user/service"
	"catalog-backend/internal/shared/middleware"
	"catalog-backend/internal/shared/response"
	"catalog-backend/internal/shared/utils"
	"catalog-backend/internal/shared/validator"
)

// CookieConfig cấu hình session cookie
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge int // seconds, 0 = session cookie
}

type UserHandler struct {
	service service.ServiceInterface
	cookie  CookieConfig
}

func NewUserHandler(svc service.ServiceInterface, cookie CookieConfig) *UserHandler {
	return &UserHandler{service: svc, cookie: cookie}
}

// Signup xử lý POST /api/signup
func (h *UserHandler) Signup(c *gin.Context) {
	var req model.Credentials
	if !utils.BindAndValidate(c, model.CredentialsSchema, &req) {
		return
	}

	if err := h.service.Signup(c.Request.Context(), req); err != nil {
		h.handleError(c, err)
		return
	}

	response.Message(c, http.StatusOK, model.MsgSignedUp)
}

// Login xử lý POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req model.Credentials
	if !utils.BindAndValidate(c, model.CredentialsSchema, &req) {
		return
	}

	token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.setCookie(c, token, h.cookie.MaxAge)
	response.Message(c, http.StatusOK, model.MsgLoggedIn)
}

// Logout xử lý POST /api/logout
// Luôn trả 200 và xóa cookie, kể cả khi token không tồn tại
func (h *UserHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(h.cookie.Name)

	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		log.Error().Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Msg("logout failed to delete session")
	}

	h.setCookie(c, "", -1)
	response.Message(c, http.StatusOK, model.MsgLoggedOut)
}

// LoginCheck xử lý GET /api/logincheck
func (h *UserHandler) LoginCheck(c *gin.Context) {
	token, _ := c.Cookie(h.cookie.Name)

	username, err := h.service.CheckSession(c.Request.Context(), token)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.SessionInfo{Username: username})
}

func (h *UserHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		h.cookie.Name,
		value,
		maxAge,
		"/",
		"",
		h.cookie.Secure,
		true, // HttpOnly
	)
}

func (h *UserHandler) handleError(c *gin.Context, err error) {
	var verr *validator.ValidationError

	switch {
	case errors.As(err, &verr):
		response.Validation(c, verr.Violations)

	case errors.Is(err, model.ErrUsernameTaken):
		response.BadRequest(c, model.MsgUsernameTaken)

	case errors.Is(err, model.ErrInvalidCredentials):
		response.BadRequest(c, model.MsgInvalidCredentials)

	case errors.Is(err, model.ErrUnauthorized):
		response.Unauthorized(c, model.MsgUnauthorized)

	default:
		log.Error().Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("auth request failed")
		response.InternalServerError(c)
	}
}
