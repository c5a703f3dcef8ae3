package domain

import (
	"fmt"
	"strings"
)

const (
	// IdentifierNamespace prefixes the compound identifiers written by the client.
	IdentifierNamespace = "d4l_f_p_t"

	// IdentifierSeparator joins the segments of a compound identifier.
	IdentifierSeparator = "#"
)

// CompoundID holds the stored asset ids of one attachment. PreviewID and ThumbnailID are
// empty when the variant does not exist.
type CompoundID struct {
	FullID      string
	PreviewID   string
	ThumbnailID string
}

// HasVariants reports whether a preview or thumbnail exists.
func (c CompoundID) HasVariants() bool {
	return c.PreviewID != "" || c.ThumbnailID != ""
}

// String builds "d4l_f_p_t#full" or, when a variant exists,
// "d4l_f_p_t#full#preview#thumbnail" with a missing variant written as the full id.
func (c CompoundID) String() string {
	if !c.HasVariants() {
		return IdentifierNamespace + IdentifierSeparator + c.FullID
	}

	preview := c.PreviewID
	if preview == "" {
		preview = c.FullID
	}
	thumbnail := c.ThumbnailID
	if thumbnail == "" {
		thumbnail = c.FullID
	}
	return strings.Join([]string{IdentifierNamespace, c.FullID, preview, thumbnail}, IdentifierSeparator)
}

// VariantID returns the asset id for downloadType, falling back to the full id when the
// variant does not exist.
func (c CompoundID) VariantID(downloadType DownloadType) string {
	switch downloadType {
	case Medium:
		if c.PreviewID != "" {
			return c.PreviewID
		}
	case Small:
		if c.ThumbnailID != "" {
			return c.ThumbnailID
		}
	}
	return c.FullID
}

// InNamespace reports whether value is a compound identifier of this client.
func InNamespace(value string) bool {
	return strings.HasPrefix(value, IdentifierNamespace+IdentifierSeparator)
}

// ParseCompoundID parses a compound identifier. Values outside the namespace return
// ok=false and no error. Values in the namespace with a segment count other than 2 or 4
// fail with ErrIDUsageViolation.
func ParseCompoundID(value string) (CompoundID, bool, error) {
	if !InNamespace(value) {
		return CompoundID{}, false, nil
	}

	parts := strings.Split(value, IdentifierSeparator)
	switch len(parts) {
	case 2:
		return CompoundID{FullID: parts[1]}, true, nil
	case 4:
		id := CompoundID{FullID: parts[1]}
		if parts[2] != parts[1] {
			id.PreviewID = parts[2]
		}
		if parts[3] != parts[1] {
			id.ThumbnailID = parts[3]
		}
		return id, true, nil
	default:
		return CompoundID{}, true, fmt.Errorf("%w: %s", ErrIDUsageViolation, value)
	}
}

// DownloadID returns the id an attachment carries after a download of downloadType:
// the full id, or "<fullId>#<variantId>" for an existing preview or thumbnail.
func (c CompoundID) DownloadID(downloadType DownloadType) string {
	variant := c.VariantID(downloadType)
	if variant == c.FullID {
		return c.FullID
	}
	return c.FullID + IdentifierSeparator + variant
}

// AssetID returns the stored asset id a download id points to.
func AssetID(downloadID string) string {
	if i := strings.LastIndex(downloadID, IdentifierSeparator); i >= 0 {
		return downloadID[i+1:]
	}
	return downloadID
}

// IsVariantDownloadID reports whether downloadID points to a preview or thumbnail.
func IsVariantDownloadID(downloadID string) bool {
	return strings.Contains(downloadID, IdentifierSeparator)
}
