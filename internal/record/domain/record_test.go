package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
)

func TestDecryptedRecord_ToRecord(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	t.Run("Defaults", func(t *testing.T) {
		rec := (&DecryptedRecord{ID: "id", CustomCreationDate: created}).ToRecord()

		assert.Equal(t, StatusActive, rec.Status)
		assert.Equal(t, []string{}, rec.Annotations)
		assert.Equal(t, created, rec.Meta.CreatedDate)
		assert.True(t, rec.Meta.UpdatedDate.IsZero())
	})

	t.Run("Populated", func(t *testing.T) {
		rec := (&DecryptedRecord{
			ID:          "id",
			Annotations: []string{"wow"},
			UpdatedDate: &updated,
			Status:      StatusPending,
		}).ToRecord()

		assert.Equal(t, StatusPending, rec.Status)
		assert.Equal(t, []string{"wow"}, rec.Annotations)
		assert.Equal(t, updated, rec.Meta.UpdatedDate)
	})
}

func TestDecryptedRecord_Destroy(t *testing.T) {
	key := &cryptoDomain.Key{Type: cryptoDomain.DataKeyType, Material: []byte{1, 2, 3}}
	rec := &DecryptedRecord{DataKey: key}

	rec.Destroy()

	assert.Equal(t, []byte{0, 0, 0}, key.Material)
}

func TestDates(t *testing.T) {
	t.Run("FormatDate", func(t *testing.T) {
		local := time.Date(2024, 3, 1, 23, 30, 0, 0, time.FixedZone("x", -3*3600))
		assert.Equal(t, "2024-03-02", FormatDate(local))
	})

	t.Run("ParseDate", func(t *testing.T) {
		parsed, err := ParseDate("2024-03-01")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), parsed)

		zero, err := ParseDate("")
		require.NoError(t, err)
		assert.True(t, zero.IsZero())

		_, err = ParseDate("01/03/2024")
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("ParseUpdatedDate", func(t *testing.T) {
		for _, value := range []string{"2024-03-01T10:11:12", "2024-03-01T10:11:12.123", "2024-03-01T10:11:12.123456"} {
			parsed, err := ParseUpdatedDate(value)
			require.NoError(t, err, value)
			assert.Equal(t, 12, parsed.Second())
		}

		empty, err := ParseUpdatedDate("")
		require.NoError(t, err)
		assert.Nil(t, empty)

		_, err = ParseUpdatedDate("yesterday")
		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}
