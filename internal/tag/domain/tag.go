// Package domain defines the tag vocabulary of the record client, the limits enforced on
// tags and custom data, and the table of legacy tag encodings older clients wrote.
package domain

import (
	"github.com/allisson/phrsdk/internal/fhir"
)

// Reserved tag keys.
const (
	TagResourceType     = "resourcetype"
	TagClient           = "client"
	TagPartner          = "partner"
	TagFhirVersion      = "fhirversion"
	TagUpdatedByClient  = "updatedbyclient"
	TagUpdatedByPartner = "updatedbypartner"
	TagAppDataKey       = "flag"
	TagAppDataValue     = "appdata"

	// AnnotationKey is the key free-form annotations are stored under.
	AnnotationKey = "custom"

	// Delimiter separates key and value in a tag entry.
	Delimiter = "="

	// PartnerSeparator separates the partner id from the platform in a client id.
	PartnerSeparator = "#"
)

const (
	// MaxTagsAndAnnotations bounds the combined number of tags and annotations of a record.
	MaxTagsAndAnnotations = 1000

	// MaxCustomDataSize bounds the payload of an app data record (10 MiB).
	MaxCustomDataSize = 10485760
)

// Tags maps tag keys to decoded values.
type Tags map[string]string

// Clone returns a copy of t. A nil map yields an empty one.
func (t Tags) Clone() Tags {
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Descriptor identifies what a record holds for tagging purposes. An empty Version marks
// app data, which is flagged instead of typed.
type Descriptor struct {
	Version      fhir.Version
	ResourceType string
}

// IsAppData reports whether the descriptor stands for an arbitrary data payload.
func (d Descriptor) IsAppData() bool {
	return d.Version == ""
}
