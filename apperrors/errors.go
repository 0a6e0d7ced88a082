package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientFeatureData = errors.New("insufficient feature data")
	ErrMissingRequiredField    = errors.New("missing required field")
	ErrFeatureExtraction       = errors.New("feature extraction failed")
	ErrNotFound                = errors.New("not found")
	ErrValidation              = errors.New("validation error")
	ErrUpstream                = errors.New("upstream service failed")

	// ErrFileTooLarge matches ErrValidation as well.
	ErrFileTooLarge = fmt.Errorf("%w: file too large", ErrValidation)
)
