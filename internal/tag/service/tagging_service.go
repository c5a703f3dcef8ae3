package service

import (
	"strings"

	tagDomain "github.com/allisson/phrsdk/internal/tag/domain"
)

// TaggingService derives the default tags of a record from the client identity.
type TaggingService struct {
	clientID  string
	partnerID string
}

// NewTaggingService creates a TaggingService. The partner id is the part of clientID
// before the first '#'.
func NewTaggingService(clientID string) *TaggingService {
	partnerID, _, _ := strings.Cut(clientID, tagDomain.PartnerSeparator)
	return &TaggingService{clientID: clientID, partnerID: partnerID}
}

// PartnerID returns the partner id.
func (s *TaggingService) PartnerID() string {
	return s.partnerID
}

// AppendDefaultTags returns old extended with the resource type, FHIR version and client
// identity. Type tags in old are replaced, never merged. When old already names a client
// or partner the record is being updated, and the updatedby tags are set instead of
// overwriting the creator.
func (s *TaggingService) AppendDefaultTags(descriptor tagDomain.Descriptor, old tagDomain.Tags) tagDomain.Tags {
	tags := old.Clone()
	delete(tags, tagDomain.TagResourceType)
	delete(tags, tagDomain.TagFhirVersion)
	delete(tags, tagDomain.TagAppDataKey)

	if !descriptor.IsAppData() && descriptor.ResourceType != "" {
		tags[tagDomain.TagResourceType] = descriptor.ResourceType
	}

	if _, ok := tags[tagDomain.TagClient]; !ok {
		tags[tagDomain.TagClient] = s.clientID
	} else {
		tags[tagDomain.TagUpdatedByClient] = s.clientID
	}

	if _, ok := tags[tagDomain.TagPartner]; !ok {
		tags[tagDomain.TagPartner] = s.partnerID
	} else {
		tags[tagDomain.TagUpdatedByPartner] = s.partnerID
	}

	tagVersion(tags, descriptor)
	return tags
}

// TagsForType returns the tags that select records of the described kind.
func (s *TaggingService) TagsForType(descriptor tagDomain.Descriptor) tagDomain.Tags {
	tags := tagDomain.Tags{}
	tagVersion(tags, descriptor)
	if !descriptor.IsAppData() && descriptor.ResourceType != "" {
		tags[tagDomain.TagResourceType] = descriptor.ResourceType
	}
	return tags
}

func tagVersion(tags tagDomain.Tags, descriptor tagDomain.Descriptor) {
	if descriptor.IsAppData() {
		tags[tagDomain.TagAppDataKey] = tagDomain.TagAppDataValue
		return
	}
	tags[tagDomain.TagFhirVersion] = string(descriptor.Version)
}
