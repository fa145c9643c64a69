package models

import "errors"

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrNoticeNotFound     = errors.New("payment notice not found")
	ErrAlreadySettled     = errors.New("payment notice already settled")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrUserNotFound       = errors.New("models: user not found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateUsername  = errors.New("models: duplicate username")
	ErrSessionNotFound    = errors.New("models: session not found")
)
