package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/phrsdk/internal/errors"
	"github.com/allisson/phrsdk/internal/fhir"
)

func TestSearchCriteria_Validate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	tests := []struct {
		name     string
		criteria SearchCriteria
		wantErr  bool
	}{
		{name: "empty", criteria: SearchCriteria{}},
		{name: "full", criteria: SearchCriteria{
			Kind: KindFhir4, ResourceType: "Patient", Annotations: []string{"a"},
			StartDate: &start, EndDate: &end, Limit: MaxSearchLimit, Offset: 10,
		}},
		{name: "negative limit", criteria: SearchCriteria{Limit: -1}, wantErr: true},
		{name: "limit too large", criteria: SearchCriteria{Limit: MaxSearchLimit + 1}, wantErr: true},
		{name: "negative offset", criteria: SearchCriteria{Offset: -5}, wantErr: true},
		{name: "unknown kind", criteria: SearchCriteria{Kind: Kind(9)}, wantErr: true},
		{name: "blank annotation", criteria: SearchCriteria{Annotations: []string{""}}, wantErr: true},
		{name: "reversed dates", criteria: SearchCriteria{StartDate: &end, EndDate: &start}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSearchCriteria_PageLimit(t *testing.T) {
	assert.Equal(t, DefaultSearchLimit, SearchCriteria{}.PageLimit())
	assert.Equal(t, 5, SearchCriteria{Limit: 5}.PageLimit())
}

func TestSearchCriteria_Descriptor(t *testing.T) {
	_, ok := SearchCriteria{}.Descriptor()
	assert.False(t, ok)

	descriptor, ok := SearchCriteria{Kind: KindFhir3, ResourceType: "Observation"}.Descriptor()
	assert.True(t, ok)
	assert.Equal(t, fhir.Version3, descriptor.Version)
	assert.Equal(t, "Observation", descriptor.ResourceType)

	descriptor, ok = SearchCriteria{Kind: KindData}.Descriptor()
	assert.True(t, ok)
	assert.True(t, descriptor.IsAppData())
}
