package seasonal

import "errors"

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrMissingSummerWindow = errors.New("summer window is not set")
	ErrInvertedSummer      = errors.New("summer start is after summer end")
	ErrNegativeRate        = errors.New("rate must not be negative")
	ErrNegativeQuantity    = errors.New("quantity must not be negative")
)
