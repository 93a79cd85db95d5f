package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("invalid request")
	ErrCreditRequired  = errors.New("credit required")
	ErrImageNotFound   = errors.New("image not found")
	ErrOptimization    = errors.New("image optimization failed")
	ErrExternalAPI     = errors.New("image provider failure")
	ErrNoImageReturned = errors.New("no image returned by provider")
)
