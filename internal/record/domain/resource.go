// Package domain defines the record model of the client: the resource a record holds,
// the decrypted and encrypted forms of a record, search criteria and batch results.
package domain

import (
	"fmt"

	"github.com/allisson/phrsdk/internal/errors"
	"github.com/allisson/phrsdk/internal/fhir"
	"github.com/allisson/phrsdk/internal/fhir/fhir3"
	"github.com/allisson/phrsdk/internal/fhir/fhir4"
	tagDomain "github.com/allisson/phrsdk/internal/tag/domain"
)

// Kind tells which variant a Resource holds.
type Kind int

const (
	KindFhir3 Kind = iota + 1
	KindFhir4
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindFhir3:
		return "fhir3"
	case KindFhir4:
		return "fhir4"
	case KindData:
		return "data"
	default:
		return "unknown"
	}
}

// ErrUnknownResourceKind is returned for a Resource whose Kind is not set.
var ErrUnknownResourceKind = errors.Wrap(errors.ErrInvalidInput, "unknown resource kind")

// Resource is the payload of a record: a FHIR STU3 resource, a FHIR R4 resource or
// arbitrary bytes. Exactly one of Fhir and Data is used, selected by Kind.
type Resource struct {
	Kind Kind
	Fhir fhir.Resource
	Data []byte
}

// NewFhir3Resource wraps an STU3 resource.
func NewFhir3Resource(r fhir.Resource) Resource {
	return Resource{Kind: KindFhir3, Fhir: r}
}

// NewFhir4Resource wraps an R4 resource.
func NewFhir4Resource(r fhir.Resource) Resource {
	return Resource{Kind: KindFhir4, Fhir: r}
}

// NewDataResource wraps an app data payload.
func NewDataResource(data []byte) Resource {
	return Resource{Kind: KindData, Data: data}
}

// Validate checks that the variant selected by Kind is populated.
func (r Resource) Validate() error {
	switch r.Kind {
	case KindFhir3, KindFhir4:
		if r.Fhir == nil {
			return errors.Wrapf(errors.ErrInvalidInput, "%s resource is empty", r.Kind)
		}
		return nil
	case KindData:
		return nil
	default:
		return ErrUnknownResourceKind
	}
}

// Descriptor returns what the default tags of the resource are derived from. A FHIR
// resource without a resolvable type is described as app data.
func (r Resource) Descriptor() tagDomain.Descriptor {
	switch r.Kind {
	case KindFhir3:
		return fhirDescriptor(fhir.Version3, r.Fhir)
	case KindFhir4:
		return fhirDescriptor(fhir.Version4, r.Fhir)
	default:
		return tagDomain.Descriptor{}
	}
}

func fhirDescriptor(version fhir.Version, r fhir.Resource) tagDomain.Descriptor {
	if r == nil || r.ResourceType() == "" {
		return tagDomain.Descriptor{}
	}
	return tagDomain.Descriptor{Version: version, ResourceType: r.ResourceType()}
}

// Attachments returns the attachments of a FHIR resource. App data has none.
func (r Resource) Attachments() []*fhir.Attachment {
	switch r.Kind {
	case KindFhir3, KindFhir4:
		if r.Fhir == nil {
			return nil
		}
		return r.Fhir.Attachments()
	default:
		return nil
	}
}

// HasAttachments reports whether the resource carries at least one attachment.
func (r Resource) HasAttachments() bool {
	return len(r.Attachments()) > 0
}

// ID returns the logical id of a FHIR resource.
func (r Resource) ID() string {
	if r.Fhir == nil {
		return ""
	}
	return r.Fhir.ResourceID()
}

// SetID sets the logical id of a FHIR resource. App data has no id.
func (r Resource) SetID(id string) {
	if r.Fhir != nil {
		r.Fhir.SetResourceID(id)
	}
}

// Marshal serializes the resource body.
func (r Resource) Marshal() ([]byte, error) {
	switch r.Kind {
	case KindFhir3, KindFhir4:
		return fhir.Encode(r.Fhir)
	case KindData:
		return r.Data, nil
	default:
		return nil, ErrUnknownResourceKind
	}
}

// KindFromTags picks the resource kind from the decrypted tags of a record.
func KindFromTags(tags tagDomain.Tags) Kind {
	if tags[tagDomain.TagAppDataKey] == tagDomain.TagAppDataValue {
		return KindData
	}
	switch fhir.Version(tags[tagDomain.TagFhirVersion]) {
	case fhir.Version3:
		return KindFhir3
	case fhir.Version4:
		return KindFhir4
	default:
		return KindData
	}
}

// UnmarshalResource parses a decrypted body of the given kind.
func UnmarshalResource(kind Kind, body []byte) (Resource, error) {
	switch kind {
	case KindFhir3:
		r, err := fhir3.Decode(body)
		if err != nil {
			return Resource{}, err
		}
		return NewFhir3Resource(r), nil
	case KindFhir4:
		r, err := fhir4.Decode(body)
		if err != nil {
			return Resource{}, err
		}
		return NewFhir4Resource(r), nil
	case KindData:
		return NewDataResource(body), nil
	default:
		return Resource{}, fmt.Errorf("%w: %d", ErrUnknownResourceKind, kind)
	}
}
