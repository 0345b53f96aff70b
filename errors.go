package kgx

import "errors"

var (
	// ErrUnsupportedFormat is returned for unrecognized record-loading formats.
	ErrUnsupportedFormat = errors.New("kgx: unsupported input format")

	// ErrDomainNotConfigured is returned when NewEngine is given an empty
	// domain directory.
	ErrDomainNotConfigured = errors.New("kgx: domain directory not configured")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("kgx: invalid configuration")
)
