package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/phrsdk/internal/fhir"
	tagDomain "github.com/allisson/phrsdk/internal/tag/domain"
	appValidation "github.com/allisson/phrsdk/internal/validation"
)

const (
	// DefaultSearchLimit is used when SearchCriteria.Limit is zero.
	DefaultSearchLimit = 20

	// MaxSearchLimit bounds the page size of a search.
	MaxSearchLimit = 1000
)

// SearchCriteria filters a record search or count. A zero Kind matches records of any
// kind; ResourceType narrows FHIR kinds to one resource type.
type SearchCriteria struct {
	Kind         Kind
	ResourceType string
	Annotations  []string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}

// Validate checks the paging and date range.
func (c SearchCriteria) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Kind, validation.In(Kind(0), KindFhir3, KindFhir4, KindData)),
		validation.Field(&c.Limit, validation.Min(0), validation.Max(MaxSearchLimit)),
		validation.Field(&c.Offset, validation.Min(0)),
		validation.Field(&c.Annotations, validation.Each(validation.Required)),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}
	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		return appValidation.WrapValidationError(
			validation.NewError("validation_date_range", "end date must not be before start date"),
		)
	}
	return nil
}

// PageLimit returns Limit or DefaultSearchLimit when it is unset.
func (c SearchCriteria) PageLimit() int {
	if c.Limit == 0 {
		return DefaultSearchLimit
	}
	return c.Limit
}

// Descriptor returns the type filter of the criteria. ok is false when records of any
// kind match.
func (c SearchCriteria) Descriptor() (descriptor tagDomain.Descriptor, ok bool) {
	switch c.Kind {
	case KindFhir3:
		return tagDomain.Descriptor{Version: fhir.Version3, ResourceType: c.ResourceType}, true
	case KindFhir4:
		return tagDomain.Descriptor{Version: fhir.Version4, ResourceType: c.ResourceType}, true
	case KindData:
		return tagDomain.Descriptor{}, true
	default:
		return tagDomain.Descriptor{}, false
	}
}

// SearchQuery is a search as sent to the backend.
type SearchQuery struct {
	Tags      []string
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

// SearchResult is one page of a search.
type SearchResult struct {
	Records    []*Record
	TotalCount int
}
