package domain

import "errors"

var (
	ErrNotFound             = errors.New("domain: not found")
	ErrShapeMismatch        = errors.New("feature-vector shape mismatch")
	ErrUnknownFeature       = errors.New("unknown feature")
	ErrUnknownMood          = errors.New("unknown mood")
	ErrUnknownView          = errors.New("unknown view")
	ErrOutOfRange           = errors.New("feature value out of range")
	ErrInsufficientClusters = errors.New("insufficient cluster diversity")
	ErrInsufficientRows     = errors.New("insufficient rows")
	ErrNotConfigured        = errors.New("not configured")
)
