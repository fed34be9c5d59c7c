package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"catalog-backend/internal/shared/validator"
)

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Session là một lần login thành công
// Chỉ lưu SHA-256 của token, token gốc nằm trong cookie của client
type Session struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials là body của /signup và /login
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var CredentialsSchema = validator.Schema{
	{Name: "username", Kind: validator.String, NonEmpty: true},
	{Name: "password", Kind: validator.String, NonEmpty: true},
}

func (r Credentials) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// SessionInfo là response của GET /logincheck
type SessionInfo struct {
	Username string `json:"username"`
}
