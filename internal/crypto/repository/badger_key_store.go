// Package repository persists the client's key material locally.
//
// The account private key, the decrypted common keys and the tag encryption key are kept
// in a badger database so a client survives restarts without asking the backend for keys
// it cannot decrypt. Every value is sealed with a KMS keeper before it is written; the
// database never holds plaintext key material.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
)

const (
	accountPrivateKeyEntry = "account/private"
	accountPublicKeyEntry  = "account/public"
	currentCommonKeyEntry  = "commonkey/current"
	commonKeyPrefix        = "commonkey/id/"
	tagKeyEntry            = "tagkey"
	sessionUserEntry       = "session/user"
	sessionTokenEntry      = "session/token"
)

// BadgerKeyStore is a KMS-sealed key store backed by badger.
type BadgerKeyStore struct {
	db     *badger.DB
	keeper cryptoDomain.KMSKeeper
}

// OpenBadgerKeyStore opens the store at path. An empty path keeps the database in memory.
func OpenBadgerKeyStore(path string, keeper cryptoDomain.KMSKeeper) (*BadgerKeyStore, error) {
	if keeper == nil {
		return nil, errors.New("key store requires a KMS keeper")
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open key store: %w", err)
	}

	return &BadgerKeyStore{db: db, keeper: keeper}, nil
}

// NewBadgerKeyStore wraps an already opened database.
func NewBadgerKeyStore(db *badger.DB, keeper cryptoDomain.KMSKeeper) *BadgerKeyStore {
	return &BadgerKeyStore{db: db, keeper: keeper}
}

// SaveAccountKey persists the account key pair.
func (s *BadgerKeyStore) SaveAccountKey(ctx context.Context, pair *cryptoDomain.AccountKeyPair) error {
	return s.putSealed(ctx, map[string][]byte{
		accountPrivateKeyEntry: pair.PrivateKey,
		accountPublicKeyEntry:  pair.PublicKey,
	})
}

// GetAccountKey returns the account key pair or ErrAccountKeyNotFound.
func (s *BadgerKeyStore) GetAccountKey(ctx context.Context) (*cryptoDomain.AccountKeyPair, error) {
	private, err := s.getSealed(ctx, accountPrivateKeyEntry)
	if errors.Is(err, cryptoDomain.ErrKeyNotFound) {
		return nil, cryptoDomain.ErrAccountKeyNotFound
	}
	if err != nil {
		return nil, err
	}

	public, err := s.getSealed(ctx, accountPublicKeyEntry)
	if errors.Is(err, cryptoDomain.ErrKeyNotFound) {
		return nil, cryptoDomain.ErrAccountKeyNotFound
	}
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.AccountKeyPair{PrivateKey: private, PublicKey: public}, nil
}

// SaveCommonKey persists a decrypted common key under id.
func (s *BadgerKeyStore) SaveCommonKey(ctx context.Context, id string, key *cryptoDomain.Key) error {
	data, err := key.MarshalExchangeFormat()
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(data)

	return s.putSealed(ctx, map[string][]byte{commonKeyPrefix + id: data})
}

// GetCommonKey returns the common key stored under id or ErrKeyNotFound.
func (s *BadgerKeyStore) GetCommonKey(ctx context.Context, id string) (*cryptoDomain.Key, error) {
	key, err := s.getKey(ctx, commonKeyPrefix+id, cryptoDomain.CommonKeyType)
	if err != nil {
		return nil, err
	}
	key.ID = id
	return key, nil
}

// SaveCurrentCommonKeyID records which common key new records are written with.
func (s *BadgerKeyStore) SaveCurrentCommonKeyID(ctx context.Context, id string) error {
	return s.putSealed(ctx, map[string][]byte{currentCommonKeyEntry: []byte(id)})
}

// GetCurrentCommonKeyID returns the current common key id or ErrKeyNotFound.
func (s *BadgerKeyStore) GetCurrentCommonKeyID(ctx context.Context) (string, error) {
	id, err := s.getSealed(ctx, currentCommonKeyEntry)
	if err != nil {
		return "", err
	}
	return string(id), nil
}

// SaveTagKey persists the tag encryption key.
func (s *BadgerKeyStore) SaveTagKey(ctx context.Context, key *cryptoDomain.Key) error {
	data, err := key.MarshalExchangeFormat()
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(data)

	return s.putSealed(ctx, map[string][]byte{tagKeyEntry: data})
}

// GetTagKey returns the tag encryption key or ErrKeyNotFound.
func (s *BadgerKeyStore) GetTagKey(ctx context.Context) (*cryptoDomain.Key, error) {
	return s.getKey(ctx, tagKeyEntry, cryptoDomain.TagKeyType)
}

// SaveSession persists the signed-in user id and access token.
func (s *BadgerKeyStore) SaveSession(ctx context.Context, userID, accessToken string) error {
	return s.putSealed(ctx, map[string][]byte{
		sessionUserEntry:  []byte(userID),
		sessionTokenEntry: []byte(accessToken),
	})
}

// GetSession returns the stored user id and access token or ErrKeyNotFound.
func (s *BadgerKeyStore) GetSession(ctx context.Context) (string, string, error) {
	userID, err := s.getSealed(ctx, sessionUserEntry)
	if err != nil {
		return "", "", err
	}
	token, err := s.getSealed(ctx, sessionTokenEntry)
	if err != nil {
		return "", "", err
	}
	return string(userID), string(token), nil
}

// Clear drops every cached common key, the tag key and the session. The account key pair
// is kept so the same device can sign in again.
func (s *BadgerKeyStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefixes := []string{commonKeyPrefix, currentCommonKeyEntry, tagKeyEntry, "session/"}
	err := s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		var names [][]byte
		for _, prefix := range prefixes {
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				names = append(names, it.Item().KeyCopy(nil))
			}
		}
		it.Close()

		for _, name := range names {
			if err := txn.Delete(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear key store: %w", err)
	}
	return nil
}

// Close closes the database and the keeper.
func (s *BadgerKeyStore) Close() error {
	return errors.Join(s.db.Close(), s.keeper.Close())
}

func (s *BadgerKeyStore) getKey(
	ctx context.Context,
	entry string,
	keyType cryptoDomain.KeyType,
) (*cryptoDomain.Key, error) {
	data, err := s.getSealed(ctx, entry)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(data)

	return cryptoDomain.UnmarshalExchangeFormat(data, keyType)
}

func (s *BadgerKeyStore) putSealed(ctx context.Context, entries map[string][]byte) error {
	sealed := make(map[string][]byte, len(entries))
	for name, plaintext := range entries {
		ciphertext, err := s.keeper.Encrypt(ctx, plaintext)
		if err != nil {
			return fmt.Errorf("failed to seal %s: %w", name, err)
		}
		sealed[name] = ciphertext
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for name, ciphertext := range sealed {
			if err := txn.Set([]byte(name), ciphertext); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerKeyStore) getSealed(ctx context.Context, name string) ([]byte, error) {
	var ciphertext []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(name))
		if err != nil {
			return err
		}
		ciphertext, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, cryptoDomain.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	plaintext, err := s.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
