package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/phrsdk/internal/database"
	apperrors "github.com/allisson/phrsdk/internal/errors"
	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
)

// PostgreSQLUserRepository implements account persistence for PostgreSQL.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}

// Create inserts a new account.
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *sandboxDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO users (id, client_id, secret_hash, public_key, common_key_id, tag_encryption_key, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.ClientID,
		user.SecretHash,
		user.PublicKey,
		user.CommonKeyID,
		user.TagEncryptionKey,
		user.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Get returns the account with id or ErrUserNotFound.
func (p *PostgreSQLUserRepository) Get(ctx context.Context, id uuid.UUID) (*sandboxDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, client_id, secret_hash, public_key, common_key_id, tag_encryption_key, created_at
			  FROM users WHERE id = $1`

	var user sandboxDomain.User
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.ClientID,
		&user.SecretHash,
		&user.PublicKey,
		&user.CommonKeyID,
		&user.TagEncryptionKey,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sandboxDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}
	return &user, nil
}

// SaveCommonKey inserts or replaces a wrapped common key.
func (p *PostgreSQLUserRepository) SaveCommonKey(ctx context.Context, key *sandboxDomain.CommonKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO common_keys (user_id, id, encrypted_key, created_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (user_id, id) DO UPDATE SET encrypted_key = EXCLUDED.encrypted_key`

	if _, err := querier.ExecContext(ctx, query, key.UserID, key.ID, key.EncryptedKey, key.CreatedAt); err != nil {
		return apperrors.Wrap(err, "failed to save common key")
	}
	return nil
}

// GetCommonKey returns a wrapped common key or ErrCommonKeyNotFound.
func (p *PostgreSQLUserRepository) GetCommonKey(
	ctx context.Context,
	userID uuid.UUID,
	id string,
) (*sandboxDomain.CommonKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT user_id, id, encrypted_key, created_at FROM common_keys WHERE user_id = $1 AND id = $2`

	var key sandboxDomain.CommonKey
	err := querier.QueryRowContext(ctx, query, userID, id).Scan(
		&key.UserID,
		&key.ID,
		&key.EncryptedKey,
		&key.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sandboxDomain.ErrCommonKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get common key")
	}
	return &key, nil
}
