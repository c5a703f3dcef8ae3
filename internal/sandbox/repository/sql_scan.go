package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	apperrors "github.com/allisson/phrsdk/internal/errors"
	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// uuidScanner adapts a dialect specific UUID column into a uuid.UUID.
type uuidScanner func(dst *uuid.UUID) (any, func() error)

// scanUUID reads native UUID columns.
func scanUUID(dst *uuid.UUID) (any, func() error) {
	return dst, func() error { return nil }
}

// scanBinaryUUID reads BINARY(16) columns.
func scanBinaryUUID(dst *uuid.UUID) (any, func() error) {
	var raw []byte
	return &raw, func() error {
		return dst.UnmarshalBinary(raw)
	}
}

func scanRecord(row rowScanner, idScan, userScan uuidScanner) (*sandboxDomain.Record, error) {
	var record sandboxDomain.Record
	var tags []byte

	idDest, idDone := idScan(&record.ID)
	userDest, userDone := userScan(&record.UserID)

	err := row.Scan(
		idDest,
		userDest,
		&record.CommonKeyID,
		&tags,
		&record.EncryptedBody,
		&record.Date,
		&record.EncryptedKey,
		&record.AttachmentKey,
		&record.ModelVersion,
		&record.Status,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := idDone(); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal record id")
	}
	if err := userDone(); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}
	if err := json.Unmarshal(tags, &record.EncryptedTags); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal record tags")
	}
	return &record, nil
}

func collectRecords(rows *sql.Rows, idScan, userScan uuidScanner) ([]*sandboxDomain.Record, error) {
	var records []*sandboxDomain.Record
	for rows.Next() {
		record, err := scanRecord(rows, idScan, userScan)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate records")
	}
	return records, nil
}

// expectAffected returns notFound when result touched no rows.
func expectAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
