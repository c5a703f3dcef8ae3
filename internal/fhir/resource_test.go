package fhir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneric_RoundTrip(t *testing.T) {
	var g Generic
	require.NoError(t, json.Unmarshal([]byte(`{"resourceType":"Appointment","status":"booked"}`), &g))
	assert.Equal(t, "Appointment", g.ResourceType())
	assert.Empty(t, g.Attachments())

	g.SetResourceID("record-1")
	assert.Equal(t, "record-1", g.ResourceID())

	data, err := json.Marshal(&g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"resourceType":"Appointment","status":"booked","id":"record-1"}`, string(data))
}

func TestRegistry_Decode(t *testing.T) {
	r := NewRegistry(Version4)

	t.Run("unknown type decodes generic", func(t *testing.T) {
		resource, err := r.Decode([]byte(`{"resourceType":"Basic","id":"1"}`))
		require.NoError(t, err)
		assert.IsType(t, &Generic{}, resource)
		assert.Equal(t, "1", resource.ResourceID())
		assert.False(t, r.Known("Basic"))
	})

	t.Run("missing resource type", func(t *testing.T) {
		_, err := r.Decode([]byte(`{"id":"1"}`))
		assert.ErrorIs(t, err, ErrMissingResourceType)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := r.Decode([]byte(`nope`))
		assert.Error(t, err)
	})
}

func TestHasAttachments(t *testing.T) {
	assert.False(t, HasAttachments(nil))
	assert.False(t, HasAttachments(&Generic{Type: "Basic"}))
}
