package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/phrsdk/internal/errors"
)

func TestDetectFileType(t *testing.T) {
	dicom := make([]byte, 132)
	copy(dicom[128:], "DICM")

	tests := []struct {
		name     string
		data     []byte
		expected FileType
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xDB}, FileTypeJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, FileTypePNG},
		{"tiff little endian", []byte{'I', 'I', 0x2A, 0x00}, FileTypeTIFF},
		{"tiff big endian", []byte{'M', 'M', 0x00, 0x2A}, FileTypeTIFF},
		{"pdf", []byte("%PDF-1.7"), FileTypePDF},
		{"dicom", dicom, FileTypeDICOM},
		{"text", []byte("hello"), FileTypeUnknown},
		{"empty", nil, FileTypeUnknown},
		{"truncated png", []byte{0x89, 'P', 'N'}, FileTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectFileType(tt.data))
		})
	}

	assert.True(t, FileTypeJPEG.IsResizable())
	assert.True(t, FileTypeTIFF.IsResizable())
	assert.False(t, FileTypePDF.IsResizable())
	assert.False(t, FileTypeDICOM.IsResizable())
}

func TestParseDownloadType(t *testing.T) {
	for value, expected := range map[string]DownloadType{"": Full, "full": Full, "medium": Medium, "small": Small} {
		got, err := ParseDownloadType(value)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}

	_, err := ParseDownloadType("huge")
	assert.ErrorIs(t, err, ErrInvalidDownloadType)
	assert.Equal(t, "medium", Medium.String())
}

func TestCompoundID_String(t *testing.T) {
	assert.Equal(t, "d4l_f_p_t#full", CompoundID{FullID: "full"}.String())
	assert.Equal(t, "d4l_f_p_t#full#preview#thumb",
		CompoundID{FullID: "full", PreviewID: "preview", ThumbnailID: "thumb"}.String())
	assert.Equal(t, "d4l_f_p_t#full#preview#full",
		CompoundID{FullID: "full", PreviewID: "preview"}.String())
}

func TestParseCompoundID(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ids := []CompoundID{
			{FullID: "full"},
			{FullID: "full", PreviewID: "preview", ThumbnailID: "thumb"},
			{FullID: "full", PreviewID: "preview"},
			{FullID: "full", ThumbnailID: "thumb"},
		}
		for _, id := range ids {
			parsed, ok, err := ParseCompoundID(id.String())
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, id, parsed)
		}
	})

	t.Run("other namespace", func(t *testing.T) {
		_, ok, err := ParseCompoundID("urn:oid:1.2.3#x")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("wrong segment count", func(t *testing.T) {
		for _, value := range []string{"d4l_f_p_t#a#b", "d4l_f_p_t#a#b#c#d"} {
			_, ok, err := ParseCompoundID(value)
			assert.True(t, ok)
			assert.ErrorIs(t, err, ErrIDUsageViolation)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Contains(t, err.Error(), value)
		}
	})
}

func TestCompoundID_VariantID(t *testing.T) {
	id := CompoundID{FullID: "full", PreviewID: "preview"}

	assert.Equal(t, "full", id.VariantID(Full))
	assert.Equal(t, "preview", id.VariantID(Medium))
	assert.Equal(t, "full", id.VariantID(Small))
}

func TestCompoundID_DownloadID(t *testing.T) {
	id := CompoundID{FullID: "full", PreviewID: "preview", ThumbnailID: "thumb"}

	assert.Equal(t, "full", id.DownloadID(Full))
	assert.Equal(t, "full#preview", id.DownloadID(Medium))
	assert.Equal(t, "full#thumb", id.DownloadID(Small))
	assert.Equal(t, "full", CompoundID{FullID: "full"}.DownloadID(Small))

	assert.Equal(t, "preview", AssetID("full#preview"))
	assert.Equal(t, "full", AssetID("full"))
	assert.True(t, IsVariantDownloadID("full#preview"))
	assert.False(t, IsVariantDownloadID("full"))
}
