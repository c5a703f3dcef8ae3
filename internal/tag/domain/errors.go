package domain

import (
	"github.com/allisson/phrsdk/internal/errors"
)

// Tag validation errors. All of them wrap ErrInvalidInput.
var (
	// ErrTagsAndAnnotationsLimitViolation indicates more than MaxTagsAndAnnotations entries.
	ErrTagsAndAnnotationsLimitViolation = errors.Wrap(
		errors.ErrInvalidInput,
		"tags and annotations limit exceeded",
	)

	// ErrCustomDataLimitViolation indicates an app data payload above MaxCustomDataSize.
	ErrCustomDataLimitViolation = errors.Wrap(errors.ErrInvalidInput, "custom data limit exceeded")

	// ErrReservedTagKey indicates a caller supplied tag that uses the annotation key.
	ErrReservedTagKey = errors.Wrap(errors.ErrInvalidInput, "tag key is reserved for annotations")

	// ErrInvalidAnnotation indicates a blank annotation.
	ErrInvalidAnnotation = errors.Wrap(errors.ErrInvalidInput, "annotation must not be blank")
)
