// Package domain defines attachment limits, the file type whitelist, download sizes and
// the compound identifier that links an attachment to its resized variants.
package domain

import (
	"bytes"
)

const (
	// DataSizeMaxBytes is the largest accepted attachment payload (20 MiB).
	DataSizeMaxBytes = 20 * 1024 * 1024

	// PreviewHeight is the height in pixels of the medium variant.
	PreviewHeight = 1000

	// ThumbnailHeight is the height in pixels of the small variant.
	ThumbnailHeight = 200

	// JPEGQuality is the encoder quality of resized variants.
	JPEGQuality = 80
)

// DownloadType selects which stored variant of an attachment is downloaded.
type DownloadType int

const (
	Full DownloadType = iota
	Medium
	Small
)

func (d DownloadType) String() string {
	switch d {
	case Full:
		return "full"
	case Medium:
		return "medium"
	case Small:
		return "small"
	default:
		return "unknown"
	}
}

// ParseDownloadType parses "full", "medium" or "small".
func ParseDownloadType(value string) (DownloadType, error) {
	switch value {
	case "", "full":
		return Full, nil
	case "medium":
		return Medium, nil
	case "small":
		return Small, nil
	default:
		return Full, ErrInvalidDownloadType
	}
}

// FileType is a whitelisted attachment format, detected from the leading bytes.
type FileType string

const (
	FileTypeUnknown FileType = ""
	FileTypeJPEG    FileType = "image/jpeg"
	FileTypePNG     FileType = "image/png"
	FileTypeTIFF    FileType = "image/tiff"
	FileTypeDICOM   FileType = "application/dicom"
	FileTypePDF     FileType = "application/pdf"
)

// dicomMagicOffset is where "DICM" follows the 128 byte preamble of a DICOM file.
const dicomMagicOffset = 128

var signatures = []struct {
	fileType FileType
	offset   int
	magic    []byte
}{
	{FileTypeJPEG, 0, []byte{0xFF, 0xD8, 0xFF}},
	{FileTypePNG, 0, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{FileTypeTIFF, 0, []byte{0x49, 0x49, 0x2A, 0x00}},
	{FileTypeTIFF, 0, []byte{0x4D, 0x4D, 0x00, 0x2A}},
	{FileTypePDF, 0, []byte{0x25, 0x50, 0x44, 0x46}},
	{FileTypeDICOM, dicomMagicOffset, []byte("DICM")},
}

// DetectFileType matches data against the whitelist signatures.
func DetectFileType(data []byte) FileType {
	for _, sig := range signatures {
		end := sig.offset + len(sig.magic)
		if len(data) >= end && bytes.Equal(data[sig.offset:end], sig.magic) {
			return sig.fileType
		}
	}
	return FileTypeUnknown
}

// IsResizable reports whether previews and thumbnails are produced for the type.
func (f FileType) IsResizable() bool {
	return f == FileTypeJPEG || f == FileTypePNG || f == FileTypeTIFF
}
