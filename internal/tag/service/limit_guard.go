package service

import (
	"strings"

	tagDomain "github.com/allisson/phrsdk/internal/tag/domain"
)

// CheckTagsAndAnnotationsLimits fails when a record carries more than
// MaxTagsAndAnnotations entries.
func CheckTagsAndAnnotationsLimits(tags tagDomain.Tags, annotations []string) error {
	if len(tags)+len(annotations) > tagDomain.MaxTagsAndAnnotations {
		return tagDomain.ErrTagsAndAnnotationsLimitViolation
	}
	return nil
}

// CheckDataLimit fails when an app data payload exceeds MaxCustomDataSize.
func CheckDataLimit(data []byte) error {
	if len(data) > tagDomain.MaxCustomDataSize {
		return tagDomain.ErrCustomDataLimitViolation
	}
	return nil
}

// ValidateAnnotations rejects blank annotations and caller tags that would be read back
// as annotations.
func ValidateAnnotations(tags tagDomain.Tags, annotations []string) error {
	if _, ok := tags[tagDomain.AnnotationKey]; ok {
		return tagDomain.ErrReservedTagKey
	}
	for _, annotation := range annotations {
		if strings.TrimSpace(annotation) == "" {
			return tagDomain.ErrInvalidAnnotation
		}
	}
	return nil
}
