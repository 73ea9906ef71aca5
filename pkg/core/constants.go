package core

import "errors"

// Errors
var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidPeak     = errors.New("invalid peak size")
	ErrNilOrder        = errors.New("nil order")
	ErrNilClock        = errors.New("nil clock")
)
