package fhir4

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/phrsdk/internal/fhir"
)

func TestRegistry(t *testing.T) {
	assert.Equal(t, fhir.Version4, Registry.Version())
	for _, name := range []string{
		DocumentReferenceType,
		DiagnosticReportType,
		PatientType,
		MedicationType,
		ObservationType,
		QuestionnaireResponseType,
	} {
		assert.True(t, Registry.Known(name), name)
	}
}

func TestDecode_DiagnosticReport(t *testing.T) {
	resource, err := Decode([]byte(`{
		"resourceType": "DiagnosticReport",
		"status": "final",
		"code": {"text": "lab"},
		"presentedForm": [{"contentType": "image/png", "data": "iVBORw=="}]
	}`))
	require.NoError(t, err)

	report, ok := resource.(*DiagnosticReport)
	require.True(t, ok)
	require.Len(t, report.Attachments(), 1)
	assert.Equal(t, "image/png", report.Attachments()[0].ContentType)
}

func TestDocumentReference_RoundTrip(t *testing.T) {
	doc := &DocumentReference{
		Status: "current",
		Date:   "2021-01-01T00:00:00Z",
		Content: []DocumentReferenceContent{
			{Attachment: fhir.Attachment{ContentType: "application/pdf", Data: []byte("%PDF-")}},
		},
	}

	data, err := fhir.Encode(doc)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
}

func TestMedication_HasIdentifiersButNoAttachments(t *testing.T) {
	med := &Medication{Identifier: []fhir.Identifier{{Value: "x"}}}
	assert.False(t, fhir.HasAttachments(med))

	var identifiable fhir.Identifiable = med
	identifiable.SetIdentifiers(nil)
	assert.Empty(t, med.Identifier)
}
