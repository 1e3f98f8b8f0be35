package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrMissingSource         = errors.New("required source table is missing")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
