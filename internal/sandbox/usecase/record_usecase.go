package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/phrsdk/internal/database"
	apperrors "github.com/allisson/phrsdk/internal/errors"
	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
)

// MaxPageSize caps the limit of one search page.
const MaxPageSize = 1000

type recordUseCase struct {
	txManager database.TxManager
	records   RecordRepository
}

// NewRecordUseCase creates a RecordUseCase.
func NewRecordUseCase(txManager database.TxManager, records RecordRepository) RecordUseCase {
	return &recordUseCase{txManager: txManager, records: records}
}

func validateEnvelope(record *sandboxDomain.Record) error {
	switch {
	case record.EncryptedBody == "":
		return apperrors.Wrap(apperrors.ErrInvalidInput, "encrypted body is required")
	case record.EncryptedKey == "":
		return apperrors.Wrap(apperrors.ErrInvalidInput, "encrypted key is required")
	case record.CommonKeyID == "":
		return apperrors.Wrap(apperrors.ErrInvalidInput, "common key id is required")
	case record.Date == "":
		return apperrors.Wrap(apperrors.ErrInvalidInput, "date is required")
	}
	return nil
}

func (r *recordUseCase) Create(ctx context.Context, record *sandboxDomain.Record) error {
	if err := validateEnvelope(record); err != nil {
		return err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return apperrors.Wrap(err, "failed to generate record id")
	}
	record.ID = id
	record.UpdatedAt = time.Now().UTC()

	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		return r.records.Create(ctx, record)
	})
}

func (r *recordUseCase) Update(ctx context.Context, record *sandboxDomain.Record) error {
	if err := validateEnvelope(record); err != nil {
		return err
	}
	record.UpdatedAt = time.Now().UTC()

	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		return r.records.Update(ctx, record)
	})
}

func (r *recordUseCase) Get(ctx context.Context, userID, id uuid.UUID) (*sandboxDomain.Record, error) {
	return r.records.Get(ctx, userID, id)
}

func validateFilter(filter *sandboxDomain.RecordFilter) error {
	if filter.Limit < 0 || filter.Offset < 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "limit and offset must not be negative")
	}
	if filter.StartDate != "" && filter.EndDate != "" && filter.StartDate > filter.EndDate {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "start date is after end date")
	}
	if filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}
	return nil
}

func (r *recordUseCase) Search(
	ctx context.Context,
	filter sandboxDomain.RecordFilter,
) ([]*sandboxDomain.Record, int, error) {
	if err := validateFilter(&filter); err != nil {
		return nil, 0, err
	}
	return r.records.Search(ctx, filter)
}

func (r *recordUseCase) Count(ctx context.Context, filter sandboxDomain.RecordFilter) (int, error) {
	if err := validateFilter(&filter); err != nil {
		return 0, err
	}
	return r.records.Count(ctx, filter)
}

func (r *recordUseCase) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		return r.records.Delete(ctx, userID, id)
	})
}
