package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/phrsdk/internal/database"
	apperrors "github.com/allisson/phrsdk/internal/errors"
	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
)

const recordColumns = `r.id, r.user_id, r.common_key_id, r.encrypted_tags, r.encrypted_body, r.date,
	r.encrypted_key, r.attachment_key, r.model_version, r.status, r.updated_at`

// PostgreSQLRecordRepository implements record envelope persistence for PostgreSQL.
// Tags are stored twice: as a JSONB array on the record and one row per tag in
// record_tags for searching. Create and Update touch both tables and are expected to
// run inside a transaction from database.TxManager.
type PostgreSQLRecordRepository struct {
	db *sql.DB
}

// NewPostgreSQLRecordRepository creates a new PostgreSQLRecordRepository.
func NewPostgreSQLRecordRepository(db *sql.DB) *PostgreSQLRecordRepository {
	return &PostgreSQLRecordRepository{db: db}
}

func (p *PostgreSQLRecordRepository) Create(ctx context.Context, record *sandboxDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	tags, err := json.Marshal(record.EncryptedTags)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record tags")
	}

	query := `INSERT INTO records (id, user_id, common_key_id, encrypted_tags, encrypted_body, date,
			  encrypted_key, attachment_key, model_version, status, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.UserID,
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

	return p.insertTags(ctx, querier, record)
}

func (p *PostgreSQLRecordRepository) insertTags(
	ctx context.Context,
	querier database.Querier,
	record *sandboxDomain.Record,
) error {
	for _, tag := range record.EncryptedTags {
		_, err := querier.ExecContext(
			ctx,
			`INSERT INTO record_tags (record_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			record.ID,
			tag,
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to create record tag")
		}
	}
	return nil
}

func (p *PostgreSQLRecordRepository) Update(ctx context.Context, record *sandboxDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	tags, err := json.Marshal(record.EncryptedTags)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record tags")
	}

	query := `UPDATE records
			  SET common_key_id = $1,
			      encrypted_tags = $2,
			      encrypted_body = $3,
			      date = $4,
			      encrypted_key = $5,
			      attachment_key = $6,
			      model_version = $7,
			      status = $8,
			      updated_at = $9
			  WHERE id = $10 AND user_id = $11`

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
		record.ID,
		record.UserID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update record")
	}
	if err := expectAffected(result, sandboxDomain.ErrRecordNotFound); err != nil {
		return err
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM record_tags WHERE record_id = $1`, record.ID); err != nil {
		return apperrors.Wrap(err, "failed to delete record tags")
	}
	return p.insertTags(ctx, querier, record)
}

func (p *PostgreSQLRecordRepository) Get(ctx context.Context, userID, id uuid.UUID) (*sandboxDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + recordColumns + ` FROM records r WHERE r.id = $1 AND r.user_id = $2`

	record, err := scanRecord(querier.QueryRowContext(ctx, query, id, userID), scanUUID, scanUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sandboxDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record")
	}
	return record, nil
}

func (p *PostgreSQLRecordRepository) Search(
	ctx context.Context,
	filter sandboxDomain.RecordFilter,
) ([]*sandboxDomain.Record, int, error) {
	total, err := p.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	querier := database.GetTx(ctx, p.db)
	where, args := recordWhere(filter, filter.UserID, postgresPlaceholder)

	query := `SELECT ` + recordColumns + ` FROM records r` + where + ` ORDER BY r.updated_at DESC, r.id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT ` + postgresPlaceholder(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET ` + postgresPlaceholder(len(args))
	}

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to search records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records, err := collectRecords(rows, scanUUID, scanUUID)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (p *PostgreSQLRecordRepository) Count(ctx context.Context, filter sandboxDomain.RecordFilter) (int, error) {
	querier := database.GetTx(ctx, p.db)
	where, args := recordWhere(filter, filter.UserID, postgresPlaceholder)

	var count int
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM records r`+where, args...).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count records")
	}
	return count, nil
}

func (p *PostgreSQLRecordRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM records WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}
	return expectAffected(result, sandboxDomain.ErrRecordNotFound)
}
