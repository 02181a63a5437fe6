package artifact

import "errors"

var (
	ErrSaveFailed  = errors.New("save failed")
	ErrNotFound    = errors.New("artifact not found")
	ErrInvalidName = errors.New("invalid artifact name")
)
