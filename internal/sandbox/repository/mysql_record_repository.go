package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/allisson/phrsdk/internal/database"
	apperrors "github.com/allisson/phrsdk/internal/errors"
	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
)

// MySQLRecordRepository implements record envelope persistence for MySQL using
// BINARY(16) ids. The tag layout matches PostgreSQLRecordRepository.
type MySQLRecordRepository struct {
	db *sql.DB
}

// NewMySQLRecordRepository creates a new MySQLRecordRepository.
func NewMySQLRecordRepository(db *sql.DB) *MySQLRecordRepository {
	return &MySQLRecordRepository{db: db}
}

func marshalIDs(ids ...uuid.UUID) ([][]byte, error) {
	out := make([][]byte, len(ids))
	for i, id := range ids {
		raw, err := id.MarshalBinary()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal id")
		}
		out[i] = raw
	}
	return out, nil
}

func (m *MySQLRecordRepository) Create(ctx context.Context, record *sandboxDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	ids, err := marshalIDs(record.ID, record.UserID)
	if err != nil {
		return err
	}
	tags, err := json.Marshal(record.EncryptedTags)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record tags")
	}

	query := `INSERT INTO records (id, user_id, common_key_id, encrypted_tags, encrypted_body, date,
			  encrypted_key, attachment_key, model_version, status, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		ids[0],
		ids[1],
		record.CommonKeyID,
		tags,
		record.EncryptedBody,
		record.Date,
		record.EncryptedKey,
		record.AttachmentKey,
		record.ModelVersion,
		record.Status,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create record")
	}

	return m.insertTags(ctx, querier, ids[0], record.EncryptedTags)
}

func (m *MySQLRecordRepository) insertTags(
	ctx context.Context,
	querier database.Querier,
	recordID []byte,
	tags []string,
) error {
	for _, tag := range tags {
		_, err := querier.ExecContext(ctx, `INSERT IGNORE INTO record_tags (record_id, tag) VALUES (?, ?)`, recordID, tag)
		if err != nil {
			return apperrors.Wrap(err, "failed to create record tag")
		}
	}
	return nil
}

func (m *MySQLRecordRepository) Update(ctx context.Context, record *sandboxDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	ids, err := marshalIDs(record.ID, record.UserID)
	if err != nil {
		return err
	}
	tags, err := json.Marshal(record.EncryptedTags)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record tags")
	}

	query := `UPDATE records
			  SET common_key_id = ?,
			      encrypted_tags = ?,
			      encrypted_body = ?,
			      date = ?,
			      encrypted_key = ?,
			      attachment_key = ?,
			      model_version = ?,
			      status = ?,
			      updated_at = ?
			  WHERE id = ? AND user_id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.CommonKeyID,
		tags,
		record.EncryptedBody,
		record.Date,
		record.EncryptedKey,
		record.AttachmentKey,
		record.ModelVersion,
		record.Status,
		record.UpdatedAt,
		ids[0],
		ids[1],
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update record")
	}
	if err := expectAffected(result, sandboxDomain.ErrRecordNotFound); err != nil {
		return err
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM record_tags WHERE record_id = ?`, ids[0]); err != nil {
		return apperrors.Wrap(err, "failed to delete record tags")
	}
	return m.insertTags(ctx, querier, ids[0], record.EncryptedTags)
}

func (m *MySQLRecordRepository) Get(ctx context.Context, userID, id uuid.UUID) (*sandboxDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	ids, err := marshalIDs(id, userID)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + recordColumns + ` FROM records r WHERE r.id = ? AND r.user_id = ?`

	record, err := scanRecord(querier.QueryRowContext(ctx, query, ids[0], ids[1]), scanBinaryUUID, scanBinaryUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sandboxDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record")
	}
	return record, nil
}

func (m *MySQLRecordRepository) Search(
	ctx context.Context,
	filter sandboxDomain.RecordFilter,
) ([]*sandboxDomain.Record, int, error) {
	total, err := m.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	userID, err := filter.UserID.MarshalBinary()
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to marshal user id")
	}

	querier := database.GetTx(ctx, m.db)
	where, args := recordWhere(filter, userID, mysqlPlaceholder)

	query := `SELECT ` + recordColumns + ` FROM records r` + where + ` ORDER BY r.updated_at DESC, r.id`
	switch {
	case filter.Limit > 0:
		args = append(args, filter.Limit, filter.Offset)
		query += ` LIMIT ? OFFSET ?`
	case filter.Offset > 0:
		// MySQL has no OFFSET without LIMIT.
		args = append(args, int64(math.MaxInt64), filter.Offset)
		query += ` LIMIT ? OFFSET ?`
	}

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to search records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records, err := collectRecords(rows, scanBinaryUUID, scanBinaryUUID)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (m *MySQLRecordRepository) Count(ctx context.Context, filter sandboxDomain.RecordFilter) (int, error) {
	userID, err := filter.UserID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal user id")
	}

	querier := database.GetTx(ctx, m.db)
	where, args := recordWhere(filter, userID, mysqlPlaceholder)

	var count int
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM records r`+where, args...).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count records")
	}
	return count, nil
}

func (m *MySQLRecordRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	ids, err := marshalIDs(id, userID)
	if err != nil {
		return err
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM records WHERE id = ? AND user_id = ?`, ids[0], ids[1])
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}
	return expectAffected(result, sandboxDomain.ErrRecordNotFound)
}
