package kernel

import "errors"

var (
	// ErrEmptyInput rejects requests with no text at the transport edge.
	// Invoke itself accepts empty input and reports it in Result.Error.
	ErrEmptyInput = errors.New("input is empty")

	ErrUnsupportedFormat = errors.New("unsupported config format")
)
