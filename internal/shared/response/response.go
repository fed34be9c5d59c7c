package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind phân loại lỗi trong error envelope
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindIntegrity    Kind = "integrity"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// InternalDetail là detail duy nhất client thấy khi có lỗi 500
const InternalDetail = "internal server error"

// ErrorBody là envelope chung cho mọi lỗi: {"kind": ..., "detail": string | []string}
type ErrorBody struct {
	Kind   Kind        `json:"kind"`
	Detail interface{} `json:"detail"`
}

// MessageBody dùng cho các endpoint auth thành công
type MessageBody struct {
	Message string `json:"message"`
}

// Success trả resource trần (object hoặc array), không bọc envelope
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, MessageBody{Message: message})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error abort chain và ghi envelope
// Abort để middleware (AccessGuard, Recovery) dùng chung được
func Error(c *gin.Context, statusCode int, kind Kind, detail interface{}) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Kind: kind, Detail: detail})
}

// Common error responses
func Validation(c *gin.Context, violations []string) {
	Error(c, http.StatusBadRequest, KindValidation, violations)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, KindValidation, message)
}

func Integrity(c *gin.Context, statusCode int, message string) {
	Error(c, statusCode, KindIntegrity, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, KindNotFound, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, KindUnauthorized, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, KindInternal, InternalDetail)
}
