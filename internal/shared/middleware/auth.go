package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/shared/response"
)

// UsernameKey là key trong gin context chứa username đã xác thực
const UsernameKey = "username"

// SessionResolver tra cứu session token
// ok=false nghĩa là token không tồn tại, err != nil là lỗi store
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (username string, ok bool, err error)
}

// AccessGuard chặn request không có session hợp lệ trong cookie
func AccessGuard(resolver SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			response.Unauthorized(c, "Unauthorized")
			return
		}

		username, ok, err := resolver.ResolveSession(c.Request.Context(), token)
		if err != nil {
			log.Error().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("session lookup failed")
			response.InternalServerError(c)
			return
		}
		if !ok {
			response.Unauthorized(c, "Unauthorized")
			return
		}

		c.Set(UsernameKey, username)
		c.Next()
	}
}
