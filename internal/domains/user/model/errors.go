package model

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionNotFound    = errors.New("session not found")
)

// Messages trả về client
const (
	MsgUsernameTaken      = "Username already exists"
	MsgInvalidCredentials = "Invalid username or password"
	MsgUnauthorized       = "Unauthorized"
	MsgSignedUp           = "User created"
	MsgLoggedIn           = "Logged in"
	MsgLoggedOut          = "Logged out"
)
