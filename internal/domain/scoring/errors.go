package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrDimensionMismatch = errors.New("embedding dimensions do not match")
)
