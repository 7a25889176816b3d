package domain

import "errors"

var (
	ErrUpstream     = errors.New("upstream_error")
	ErrStorage      = errors.New("storage_error")
	ErrInvalidRange = errors.New("invalid_range")
)
