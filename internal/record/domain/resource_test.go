package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/phrsdk/internal/fhir"
	"github.com/allisson/phrsdk/internal/fhir/fhir3"
	"github.com/allisson/phrsdk/internal/fhir/fhir4"
	tagDomain "github.com/allisson/phrsdk/internal/tag/domain"
)

func TestResource_Validate(t *testing.T) {
	tests := []struct {
		name     string
		resource Resource
		wantErr  bool
	}{
		{name: "fhir4", resource: NewFhir4Resource(&fhir4.Patient{})},
		{name: "fhir3", resource: NewFhir3Resource(&fhir3.Patient{})},
		{name: "empty data", resource: NewDataResource(nil)},
		{name: "empty fhir", resource: NewFhir4Resource(nil), wantErr: true},
		{name: "zero value", resource: Resource{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resource.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestResource_Descriptor(t *testing.T) {
	assert.Equal(t,
		tagDomain.Descriptor{Version: fhir.Version4, ResourceType: "Patient"},
		NewFhir4Resource(&fhir4.Patient{}).Descriptor(),
	)
	assert.Equal(t,
		tagDomain.Descriptor{Version: fhir.Version3, ResourceType: "DocumentReference"},
		NewFhir3Resource(&fhir3.DocumentReference{}).Descriptor(),
	)
	assert.True(t, NewDataResource([]byte("x")).Descriptor().IsAppData())
}

func TestResource_AttachmentsAndID(t *testing.T) {
	doc := &fhir4.DocumentReference{
		Content: []fhir4.DocumentReferenceContent{{Attachment: fhir.Attachment{Title: "a"}}},
	}
	resource := NewFhir4Resource(doc)

	assert.True(t, resource.HasAttachments())
	assert.Equal(t, "a", resource.Attachments()[0].Title)

	resource.SetID("record-1")
	assert.Equal(t, "record-1", resource.ID())
	assert.Equal(t, "record-1", doc.ID)

	data := NewDataResource([]byte("x"))
	data.SetID("ignored")
	assert.False(t, data.HasAttachments())
	assert.Empty(t, data.ID())
}

func TestKindFromTags(t *testing.T) {
	tests := []struct {
		name string
		tags tagDomain.Tags
		want Kind
	}{
		{name: "fhir3", tags: tagDomain.Tags{tagDomain.TagFhirVersion: "3.0.1"}, want: KindFhir3},
		{name: "fhir4", tags: tagDomain.Tags{tagDomain.TagFhirVersion: "4.0.1"}, want: KindFhir4},
		{name: "app data flag", tags: tagDomain.Tags{tagDomain.TagAppDataKey: tagDomain.TagAppDataValue}, want: KindData},
		{name: "unknown version", tags: tagDomain.Tags{tagDomain.TagFhirVersion: "1.0.2"}, want: KindData},
		{name: "no tags", tags: tagDomain.Tags{}, want: KindData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindFromTags(tt.tags))
		})
	}
}

func TestMarshalAndUnmarshalResource(t *testing.T) {
	original := NewFhir4Resource(&fhir4.Patient{Gender: "female"})
	body, err := original.Marshal()
	require.NoError(t, err)

	parsed, err := UnmarshalResource(KindFhir4, body)
	require.NoError(t, err)
	assert.Equal(t, KindFhir4, parsed.Kind)
	assert.Equal(t, "female", parsed.Fhir.(*fhir4.Patient).Gender)

	data, err := UnmarshalResource(KindData, []byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), data.Data)

	_, err = UnmarshalResource(Kind(0), body)
	assert.ErrorIs(t, err, ErrUnknownResourceKind)
}
