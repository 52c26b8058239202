package player

import "errors"

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrAlreadyRegistered = errors.New("player already has a registration number")
)
