package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/shared/response"
	"catalog-backend/internal/shared/validator"
)

// PathID đọc :id, ghi 400 và trả false nếu không phải số nguyên dương
func PathID(c *gin.Context) (int64, bool) {
	id, err := ParseIDParam(c, "id")
	if err != nil {
		response.Validation(c, []string{`"id": must be a positive integer`})
		return 0, false
	}
	return id, true
}

// BindAndValidate đọc body, validate theo schema và decode vào dest
// Trả false khi đã ghi response lỗi
func BindAndValidate(c *gin.Context, schema validator.Schema, dest any) bool {
	raw, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, validator.MsgUndecodable)
		return false
	}

	if err := validator.Bind(raw, schema, dest); err != nil {
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			response.Validation(c, verr.Violations)
			return false
		}
		log.Error().Err(err).Msg("body validation failed")
		response.InternalServerError(c)
		return false
	}
	return true
}
