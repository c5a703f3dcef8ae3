package fhir4

import (
	"encoding/json"

	"github.com/allisson/phrsdk/internal/fhir"
)

type DocumentReferenceContent struct {
	Attachment fhir.Attachment `json:"attachment"`
}

// DocumentReference references a document. Its attachments sit in content[].attachment.
type DocumentReference struct {
	fhir.Base
	Identifier  []fhir.Identifier          `json:"identifier,omitempty"`
	Status      string                     `json:"status,omitempty"`
	Type        *fhir.CodeableConcept      `json:"type,omitempty"`
	Subject     *fhir.Reference            `json:"subject,omitempty"`
	Date        string                     `json:"date,omitempty"`
	Author      []fhir.Reference           `json:"author,omitempty"`
	Description string                     `json:"description,omitempty"`
	Content     []DocumentReferenceContent `json:"content,omitempty"`
}

func (d *DocumentReference) ResourceType() string { return DocumentReferenceType }

func (d *DocumentReference) Attachments() []*fhir.Attachment {
	var out []*fhir.Attachment
	for i := range d.Content {
		out = append(out, &d.Content[i].Attachment)
	}
	return out
}

func (d *DocumentReference) Identifiers() []fhir.Identifier { return d.Identifier }

func (d *DocumentReference) SetIdentifiers(ids []fhir.Identifier) { d.Identifier = ids }

func (d DocumentReference) MarshalJSON() ([]byte, error) {
	type alias DocumentReference
	return json.Marshal(struct {
		ResourceType string `json:"resourceType"`
		alias
	}{DocumentReferenceType, alias(d)})
}

// DiagnosticReport carries rendered reports in presentedForm.
type DiagnosticReport struct {
	fhir.Base
	Identifier    []fhir.Identifier    `json:"identifier,omitempty"`
	Status        string               `json:"status,omitempty"`
	Code          fhir.CodeableConcept `json:"code"`
	Subject       *fhir.Reference      `json:"subject,omitempty"`
	Issued        string               `json:"issued,omitempty"`
	Conclusion    string               `json:"conclusion,omitempty"`
	PresentedForm []fhir.Attachment    `json:"presentedForm,omitempty"`
}

func (d *DiagnosticReport) ResourceType() string { return DiagnosticReportType }

func (d *DiagnosticReport) Attachments() []*fhir.Attachment {
	return fhir.AttachmentPointers(nil, d.PresentedForm)
}

func (d *DiagnosticReport) Identifiers() []fhir.Identifier { return d.Identifier }

func (d *DiagnosticReport) SetIdentifiers(ids []fhir.Identifier) { d.Identifier = ids }

func (d DiagnosticReport) MarshalJSON() ([]byte, error) {
	type alias DiagnosticReport
	return json.Marshal(struct {
		ResourceType string `json:"resourceType"`
		alias
	}{DiagnosticReportType, alias(d)})
}

// Patient carries photos.
type Patient struct {
	fhir.Base
	Identifier []fhir.Identifier `json:"identifier,omitempty"`
	Active     *bool             `json:"active,omitempty"`
	Name       []fhir.HumanName  `json:"name,omitempty"`
	Gender     string            `json:"gender,omitempty"`
	BirthDate  string            `json:"birthDate,omitempty"`
	Photo      []fhir.Attachment `json:"photo,omitempty"`
}

func (p *Patient) ResourceType() string { return PatientType }

func (p *Patient) Attachments() []*fhir.Attachment {
	return fhir.AttachmentPointers(nil, p.Photo)
}

func (p *Patient) Identifiers() []fhir.Identifier { return p.Identifier }

func (p *Patient) SetIdentifiers(ids []fhir.Identifier) { p.Identifier = ids }

func (p Patient) MarshalJSON() ([]byte, error) {
	type alias Patient
	return json.Marshal(struct {
		ResourceType string `json:"resourceType"`
		alias
	}{PatientType, alias(p)})
}

// Medication has no attachment elements in R4; it is modelled for its identifier list.
type Medication struct {
	fhir.Base
	Identifier []fhir.Identifier     `json:"identifier,omitempty"`
	Code       *fhir.CodeableConcept `json:"code,omitempty"`
	Status     string                `json:"status,omitempty"`
	Form       *fhir.CodeableConcept `json:"form,omitempty"`
}

func (m *Medication) ResourceType() string { return MedicationType }

func (m *Medication) Attachments() []*fhir.Attachment { return nil }

func (m *Medication) Identifiers() []fhir.Identifier { return m.Identifier }

func (m *Medication) SetIdentifiers(ids []fhir.Identifier) { m.Identifier = ids }

func (m Medication) MarshalJSON() ([]byte, error) {
	type alias Medication
	return json.Marshal(struct {
		ResourceType string `json:"resourceType"`
		alias
	}{MedicationType, alias(m)})
}

type ObservationComponent struct {
	Code            fhir.CodeableConcept `json:"code"`
	ValueString     string               `json:"valueString,omitempty"`
	ValueAttachment *fhir.Attachment     `json:"valueAttachment,omitempty"`
}

// Observation carries attachments as valueAttachment, on itself or on its components.
type Observation struct {
	fhir.Base
	Identifier      []fhir.Identifier      `json:"identifier,omitempty"`
	Status          string                 `json:"status,omitempty"`
	Code            fhir.CodeableConcept   `json:"code"`
	Subject         *fhir.Reference        `json:"subject,omitempty"`
	EffectiveDate   string                 `json:"effectiveDateTime,omitempty"`
	Issued          string                 `json:"issued,omitempty"`
	ValueString     string                 `json:"valueString,omitempty"`
	ValueAttachment *fhir.Attachment       `json:"valueAttachment,omitempty"`
	Component       []ObservationComponent `json:"component,omitempty"`
}

func (o *Observation) ResourceType() string { return ObservationType }

func (o *Observation) Attachments() []*fhir.Attachment {
	out := fhir.AppendAttachment(nil, o.ValueAttachment)
	for i := range o.Component {
		out = fhir.AppendAttachment(out, o.Component[i].ValueAttachment)
	}
	return out
}

func (o *Observation) Identifiers() []fhir.Identifier { return o.Identifier }

func (o *Observation) SetIdentifiers(ids []fhir.Identifier) { o.Identifier = ids }

func (o Observation) MarshalJSON() ([]byte, error) {
	type alias Observation
	return json.Marshal(struct {
		ResourceType string `json:"resourceType"`
		alias
	}{ObservationType, alias(o)})
}

type QuestionnaireResponseAnswer struct {
	ValueString     string                      `json:"valueString,omitempty"`
	ValueAttachment *fhir.Attachment            `json:"valueAttachment,omitempty"`
	Item            []QuestionnaireResponseItem `json:"item,omitempty"`
}

type QuestionnaireResponseItem struct {
	LinkID string                        `json:"linkId"`
	Text   string                        `json:"text,omitempty"`
	Answer []QuestionnaireResponseAnswer `json:"answer,omitempty"`
	Item   []QuestionnaireResponseItem   `json:"item,omitempty"`
}

// QuestionnaireResponse carries attachments in answers of arbitrarily nested items. It has
// a single identifier rather than a list, so attachment variants are not recorded on it.
type QuestionnaireResponse struct {
	fhir.Base
	Identifier    *fhir.Identifier            `json:"identifier,omitempty"`
	Questionnaire *fhir.Reference             `json:"questionnaire,omitempty"`
	Status        string                      `json:"status,omitempty"`
	Authored      string                      `json:"authored,omitempty"`
	Item          []QuestionnaireResponseItem `json:"item,omitempty"`
}

func (q *QuestionnaireResponse) ResourceType() string { return QuestionnaireResponseType }

func (q *QuestionnaireResponse) Attachments() []*fhir.Attachment {
	return collectItemAttachments(nil, q.Item)
}

func collectItemAttachments(out []*fhir.Attachment, items []QuestionnaireResponseItem) []*fhir.Attachment {
	for i := range items {
		for j := range items[i].Answer {
			out = fhir.AppendAttachment(out, items[i].Answer[j].ValueAttachment)
			out = collectItemAttachments(out, items[i].Answer[j].Item)
		}
		out = collectItemAttachments(out, items[i].Item)
	}
	return out
}

func (q QuestionnaireResponse) MarshalJSON() ([]byte, error) {
	type alias QuestionnaireResponse
	return json.Marshal(struct {
		ResourceType string `json:"resourceType"`
		alias
	}{QuestionnaireResponseType, alias(q)})
}
