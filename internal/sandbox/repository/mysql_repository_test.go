package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
)

func binaryID(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	raw, err := id.MarshalBinary()
	require.NoError(t, err)
	return raw
}

func TestMySQLUserRepository_Get(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLUserRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
			WithArgs(binaryID(t, id)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "client_id", "secret_hash", "public_key", "common_key_id", "tag_encryption_key", "created_at",
			}).AddRow(binaryID(t, id), "client", "hash", []byte{1}, "ck", "tek", time.Now()))

		user, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "ck", user.CommonKeyID)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLUserRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, id)
		assert.ErrorIs(t, err, sandboxDomain.ErrUserNotFound)
	})
}

func TestMySQLUserRepository_GetCommonKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLUserRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM common_keys WHERE user_id = ? AND id = ?")).
		WithArgs(binaryID(t, userID), "ck").
		WillReturnRows(sqlmock.NewRows([]string{"id", "encrypted_key", "created_at"}).
			AddRow("ck", "wrapped", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("FROM common_keys WHERE user_id = ? AND id = ?")).
		WithArgs(binaryID(t, userID), "missing").
		WillReturnError(sql.ErrNoRows)

	key, err := repo.GetCommonKey(context.Background(), userID, "ck")
	require.NoError(t, err)
	assert.Equal(t, userID, key.UserID)
	assert.Equal(t, "wrapped", key.EncryptedKey)

	_, err = repo.GetCommonKey(context.Background(), userID, "missing")
	assert.ErrorIs(t, err, sandboxDomain.ErrCommonKeyNotFound)
}

func TestMySQLRecordRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLRecordRepository(db)
	record := newTestRecord(uuid.New(), "2023-01-01", time.Now(), "t1")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO records")).
		WithArgs(
			binaryID(t, record.ID), binaryID(t, record.UserID), record.CommonKeyID, []byte(`["t1"]`),
			record.EncryptedBody, record.Date, record.EncryptedKey, record.AttachmentKey,
			record.ModelVersion, record.Status, record.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO record_tags")).
		WithArgs(binaryID(t, record.ID), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRecordRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLRecordRepository(db)
	userID := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM records r WHERE r.id = ? AND r.user_id = ?")).
		WithArgs(binaryID(t, id), binaryID(t, userID)).
		WillReturnRows(sqlmock.NewRows(recordColumnNames).AddRow(
			binaryID(t, id), binaryID(t, userID), "ck", []byte(`["t1"]`), "body", "2023-01-01",
			"dk", "", 1, "", time.Now(),
		))

	record, err := repo.Get(context.Background(), userID, id)
	require.NoError(t, err)
	assert.Equal(t, id, record.ID)
	assert.Equal(t, userID, record.UserID)
	assert.Equal(t, []string{"t1"}, record.EncryptedTags)
}

func TestMySQLRecordRepository_Search(t *testing.T) {
	userID := uuid.New()
	where := "WHERE r.user_id = ? AND EXISTS (SELECT 1 FROM record_tags rt WHERE rt.record_id = r.id AND rt.tag IN (?, ?))"

	tests := []struct {
		name       string
		filter     sandboxDomain.RecordFilter
		pageClause string
		pageArgs   []driver.Value
	}{
		{
			name:       "LimitAndOffset",
			filter:     sandboxDomain.RecordFilter{UserID: userID, TagGroups: [][]string{{"a", "b"}}, Limit: 2, Offset: 4},
			pageClause: " LIMIT ? OFFSET ?",
			pageArgs:   []driver.Value{2, 4},
		},
		{
			name:       "OffsetOnly",
			filter:     sandboxDomain.RecordFilter{UserID: userID, TagGroups: [][]string{{"a", "b"}}, Offset: 4},
			pageClause: " LIMIT ? OFFSET ?",
			pageArgs:   []driver.Value{int64(math.MaxInt64), 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewMySQLRecordRepository(db)

			countArgs := []driver.Value{binaryID(t, userID), "a", "b"}
			mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM records r " + where)).
				WithArgs(countArgs...).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

			searchArgs := append(append([]driver.Value{}, countArgs...), tt.pageArgs...)
			mock.ExpectQuery(regexp.QuoteMeta(where + " ORDER BY r.updated_at DESC, r.id" + tt.pageClause)).
				WithArgs(searchArgs...).
				WillReturnRows(sqlmock.NewRows(recordColumnNames))

			records, total, err := repo.Search(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Zero(t, total)
			assert.Empty(t, records)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
