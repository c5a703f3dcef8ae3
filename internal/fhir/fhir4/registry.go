// Package fhir4 models the FHIR R4 (4.0.1) resources that can carry attachments.
package fhir4

import (
	"github.com/allisson/phrsdk/internal/fhir"
)

const (
	DocumentReferenceType     = "DocumentReference"
	DiagnosticReportType      = "DiagnosticReport"
	PatientType               = "Patient"
	MedicationType            = "Medication"
	ObservationType           = "Observation"
	QuestionnaireResponseType = "QuestionnaireResponse"
)

// Registry decodes R4 documents.
var Registry = newRegistry()

func newRegistry() *fhir.Registry {
	r := fhir.NewRegistry(fhir.Version4)
	r.Register(DocumentReferenceType, func() fhir.Resource { return &DocumentReference{} })
	r.Register(DiagnosticReportType, func() fhir.Resource { return &DiagnosticReport{} })
	r.Register(PatientType, func() fhir.Resource { return &Patient{} })
	r.Register(MedicationType, func() fhir.Resource { return &Medication{} })
	r.Register(ObservationType, func() fhir.Resource { return &Observation{} })
	r.Register(QuestionnaireResponseType, func() fhir.Resource { return &QuestionnaireResponse{} })
	return r
}

// Decode parses an R4 resource.
func Decode(data []byte) (fhir.Resource, error) {
	return Registry.Decode(data)
}
