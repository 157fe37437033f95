package core

import "errors"

var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrConnectionLost = errors.New("connection lost")
)
