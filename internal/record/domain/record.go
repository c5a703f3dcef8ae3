package domain

import (
	"time"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
	tagDomain "github.com/allisson/phrsdk/internal/tag/domain"
)

// CurrentModelVersion is the newest envelope layout this client reads and writes.
const CurrentModelVersion = 1

const (
	// DateLayout formats the custom creation date of a record.
	DateLayout = "2006-01-02"

	// UpdatedDateLayout formats the update date. Parsing accepts an optional fraction
	// of up to six digits after the seconds.
	UpdatedDateLayout = "2006-01-02T15:04:05.000000"

	updatedDateParseLayout = "2006-01-02T15:04:05"
)

// Status is the lifecycle state of a record.
type Status string

const (
	StatusActive  Status = "Active"
	StatusPending Status = "Pending"
	StatusDeleted Status = "Deleted"
)

// Meta holds the dates of a record.
type Meta struct {
	CreatedDate time.Time
	UpdatedDate time.Time
}

// Record is what the client hands back to callers.
type Record struct {
	ID          string
	Resource    Resource
	Annotations []string
	Meta        Meta
	Status      Status
}

// DecryptedRecord is a record in clear text together with its keys.
//
// The record owns DataKey and AttachmentKey. CommonKeyID names the common key the keys
// are wrapped with.
type DecryptedRecord struct {
	ID                 string
	Resource           Resource
	Tags               tagDomain.Tags
	Annotations        []string
	CustomCreationDate time.Time
	UpdatedDate        *time.Time
	DataKey            *cryptoDomain.Key
	AttachmentKey      *cryptoDomain.Key
	ModelVersion       int
	Status             Status
	CommonKeyID        string
}

// ToRecord returns the caller view of d.
func (d *DecryptedRecord) ToRecord() *Record {
	meta := Meta{CreatedDate: d.CustomCreationDate}
	if d.UpdatedDate != nil {
		meta.UpdatedDate = *d.UpdatedDate
	}
	status := d.Status
	if status == "" {
		status = StatusActive
	}
	annotations := d.Annotations
	if annotations == nil {
		annotations = []string{}
	}
	return &Record{
		ID:          d.ID,
		Resource:    d.Resource,
		Annotations: annotations,
		Meta:        meta,
		Status:      status,
	}
}

// Destroy zeroes the record keys.
func (d *DecryptedRecord) Destroy() {
	if d.DataKey != nil {
		d.DataKey.Destroy()
	}
	if d.AttachmentKey != nil {
		d.AttachmentKey.Destroy()
	}
}

// EncryptedRecord is the envelope exchanged with the backend. Only the backend assigns
// ID and UpdatedDate.
type EncryptedRecord struct {
	ID                     string                    `json:"record_id,omitempty"`
	CommonKeyID            string                    `json:"common_key_id,omitempty"`
	EncryptedTags          []string                  `json:"encrypted_tags"`
	EncryptedBody          string                    `json:"encrypted_body"`
	CustomCreationDate     string                    `json:"date"`
	EncryptedDataKey       cryptoDomain.EncryptedKey `json:"encrypted_key"`
	EncryptedAttachmentKey cryptoDomain.EncryptedKey `json:"attachment_key,omitempty"`
	ModelVersion           int                       `json:"model_version"`
	UpdatedDate            string                    `json:"createdAt,omitempty"`
	Status                 Status                    `json:"status,omitempty"`
}

// FormatDate formats t as a creation date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a creation date. An empty value yields the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseUpdatedDate parses an update date with or without fractional seconds. An empty
// value yields nil.
func ParseUpdatedDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(updatedDateParseLayout, value)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}
