package service

import (
	attachmentDomain "github.com/allisson/phrsdk/internal/attachment/domain"
	"github.com/allisson/phrsdk/internal/fhir"
)

// UpdateIdentifiers rewrites the compound identifiers of resource after an upload.
//
// Compound identifiers whose full id matches none of the resource's attachments are
// removed, one identifier per uploaded attachment is appended with partnerID as
// assigner, and identifiers of other namespaces are left untouched. Resources without an
// identifier list are not changed.
func UpdateIdentifiers(resource fhir.Resource, uploaded []attachmentDomain.CompoundID, partnerID string) error {
	identifiable, ok := resource.(fhir.Identifiable)
	if !ok {
		return nil
	}

	current := make(map[string]struct{})
	for _, att := range resource.Attachments() {
		if att.ID != "" {
			current[att.ID] = struct{}{}
		}
	}

	existing := identifiable.Identifiers()
	kept := make([]fhir.Identifier, 0, len(existing)+len(uploaded))
	for _, identifier := range existing {
		id, inNamespace, err := attachmentDomain.ParseCompoundID(identifier.Value)
		if err != nil {
			return err
		}
		if inNamespace {
			if _, found := current[id.FullID]; !found {
				continue
			}
		}
		kept = append(kept, identifier)
	}

	for _, id := range uploaded {
		kept = append(kept, fhir.Identifier{
			Value:    id.String(),
			Assigner: &fhir.Reference{Reference: partnerID},
		})
	}

	identifiable.SetIdentifiers(kept)
	return nil
}

// CompoundIDs returns the compound identifiers of resource keyed by full id. A malformed
// identifier in the namespace fails with ErrIDUsageViolation.
func CompoundIDs(resource fhir.Resource) (map[string]attachmentDomain.CompoundID, error) {
	out := map[string]attachmentDomain.CompoundID{}

	identifiable, ok := resource.(fhir.Identifiable)
	if !ok {
		return out, nil
	}

	for _, identifier := range identifiable.Identifiers() {
		id, inNamespace, err := attachmentDomain.ParseCompoundID(identifier.Value)
		if err != nil {
			return nil, err
		}
		if inNamespace {
			out[id.FullID] = id
		}
	}
	return out, nil
}

// DownloadID returns the id to download for att. Attachments without a compound
// identifier are always downloaded in full.
func DownloadID(
	att *fhir.Attachment,
	ids map[string]attachmentDomain.CompoundID,
	downloadType attachmentDomain.DownloadType,
) (string, error) {
	if att.ID == "" {
		return "", attachmentDomain.ErrAttachmentIDExpected
	}

	id, ok := ids[att.ID]
	if !ok {
		return att.ID, nil
	}
	return id.DownloadID(downloadType), nil
}
