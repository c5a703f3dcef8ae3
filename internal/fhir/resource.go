// Package fhir holds the element types shared by the FHIR STU3 and R4 resource models and
// the contracts the record client relies on: walking a resource's attachments and
// rewriting its identifier list.
//
// Only the resources that can carry attachments are modelled field by field. Anything
// else decodes into Generic, which round-trips its JSON untouched.
package fhir

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the FHIR version string written into the fhirversion tag.
type Version string

const (
	Version3 Version = "3.0.1"
	Version4 Version = "4.0.1"
)

// ErrMissingResourceType is returned when a document has no resourceType member.
var ErrMissingResourceType = errors.New("missing resourceType")

// Resource is a FHIR resource of either version.
type Resource interface {
	// ResourceType returns the FHIR resource type name, or "" when it is unknown.
	ResourceType() string

	// ResourceID returns the logical id.
	ResourceID() string

	// SetResourceID replaces the logical id.
	SetResourceID(id string)

	// Attachments returns pointers to every attachment of the resource in document order.
	Attachments() []*Attachment
}

// Identifiable is implemented by resources with an identifier list.
type Identifiable interface {
	Identifiers() []Identifier
	SetIdentifiers(identifiers []Identifier)
}

// Base holds the members every resource has besides resourceType.
type Base struct {
	ID string `json:"id,omitempty"`
}

func (b *Base) ResourceID() string {
	return b.ID
}

func (b *Base) SetResourceID(id string) {
	b.ID = id
}

// HasAttachments reports whether r carries at least one attachment.
func HasAttachments(r Resource) bool {
	return r != nil && len(r.Attachments()) > 0
}

// Generic is a resource type the client does not model. Its JSON is kept verbatim apart
// from the id member.
type Generic struct {
	Type string
	Raw  map[string]json.RawMessage
}

func (g *Generic) ResourceType() string {
	return g.Type
}

func (g *Generic) ResourceID() string {
	var id string
	if raw, ok := g.Raw["id"]; ok {
		_ = json.Unmarshal(raw, &id)
	}
	return id
}

func (g *Generic) SetResourceID(id string) {
	if g.Raw == nil {
		g.Raw = map[string]json.RawMessage{}
	}
	encoded, _ := json.Marshal(id)
	g.Raw["id"] = encoded
}

func (g *Generic) Attachments() []*Attachment {
	return nil
}

func (g *Generic) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(g.Raw)+1)
	for k, v := range g.Raw {
		out[k] = v
	}
	if g.Type != "" {
		encoded, _ := json.Marshal(g.Type)
		out["resourceType"] = encoded
	}
	return json.Marshal(out)
}

func (g *Generic) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var resourceType string
	if value, ok := raw["resourceType"]; ok {
		if err := json.Unmarshal(value, &resourceType); err != nil {
			return fmt.Errorf("invalid resourceType: %w", err)
		}
	}
	g.Type = resourceType
	g.Raw = raw
	return nil
}

// Registry maps resource type names to constructors for one FHIR version.
type Registry struct {
	version   Version
	factories map[string]func() Resource
}

// NewRegistry creates an empty registry for version.
func NewRegistry(version Version) *Registry {
	return &Registry{version: version, factories: map[string]func() Resource{}}
}

// Register adds a constructor for resourceType.
func (r *Registry) Register(resourceType string, factory func() Resource) {
	r.factories[resourceType] = factory
}

// Version returns the FHIR version of the registry.
func (r *Registry) Version() Version {
	return r.version
}

// Known reports whether resourceType has a modelled type.
func (r *Registry) Known(resourceType string) bool {
	_, ok := r.factories[resourceType]
	return ok
}

// Decode parses data into the modelled type for its resourceType, or into Generic.
func (r *Registry) Decode(data []byte) (Resource, error) {
	var head struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to decode FHIR %s resource: %w", r.version, err)
	}
	if head.ResourceType == "" {
		return nil, ErrMissingResourceType
	}

	factory, ok := r.factories[head.ResourceType]
	if !ok {
		generic := &Generic{}
		if err := json.Unmarshal(data, generic); err != nil {
			return nil, err
		}
		return generic, nil
	}

	resource := factory()
	if err := json.Unmarshal(data, resource); err != nil {
		return nil, fmt.Errorf("failed to decode FHIR %s %s: %w", r.version, head.ResourceType, err)
	}
	return resource, nil
}

// Encode serializes a resource.
func Encode(resource Resource) ([]byte, error) {
	return json.Marshal(resource)
}

// AppendAttachment returns a pointer to att when it is set.
func AppendAttachment(out []*Attachment, att *Attachment) []*Attachment {
	if att == nil {
		return out
	}
	return append(out, att)
}

// AttachmentPointers returns pointers into atts.
func AttachmentPointers(out []*Attachment, atts []Attachment) []*Attachment {
	for i := range atts {
		out = append(out, &atts[i])
	}
	return out
}
