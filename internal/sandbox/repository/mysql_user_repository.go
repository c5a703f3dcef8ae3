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

// MySQLUserRepository implements account persistence for MySQL using BINARY(16) ids.
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func (m *MySQLUserRepository) Create(ctx context.Context, user *sandboxDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO users (id, client_id, secret_hash, public_key, common_key_id, tag_encryption_key, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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

func (m *MySQLUserRepository) Get(ctx context.Context, id uuid.UUID) (*sandboxDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	rawID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id, client_id, secret_hash, public_key, common_key_id, tag_encryption_key, created_at
			  FROM users WHERE id = ?`

	var user sandboxDomain.User
	var idBytes []byte
	err = querier.QueryRowContext(ctx, query, rawID).Scan(
		&idBytes,
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
	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}
	return &user, nil
}

func (m *MySQLUserRepository) SaveCommonKey(ctx context.Context, key *sandboxDomain.CommonKey) error {
	querier := database.GetTx(ctx, m.db)

	userID, err := key.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO common_keys (user_id, id, encrypted_key, created_at)
			  VALUES (?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE encrypted_key = VALUES(encrypted_key)`

	if _, err := querier.ExecContext(ctx, query, userID, key.ID, key.EncryptedKey, key.CreatedAt); err != nil {
		return apperrors.Wrap(err, "failed to save common key")
	}
	return nil
}

func (m *MySQLUserRepository) GetCommonKey(
	ctx context.Context,
	userID uuid.UUID,
	id string,
) (*sandboxDomain.CommonKey, error) {
	querier := database.GetTx(ctx, m.db)

	rawUserID, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id, encrypted_key, created_at FROM common_keys WHERE user_id = ? AND id = ?`

	key := sandboxDomain.CommonKey{UserID: userID}
	err = querier.QueryRowContext(ctx, query, rawUserID, id).Scan(&key.ID, &key.EncryptedKey, &key.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sandboxDomain.ErrCommonKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get common key")
	}
	return &key, nil
}
