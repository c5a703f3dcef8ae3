package service

import (
	"log/slog"
	"strings"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
	cryptoService "github.com/allisson/phrsdk/internal/crypto/service"
	tagDomain "github.com/allisson/phrsdk/internal/tag/domain"
)

// EncryptionService encrypts encoded tag lists with the tag key.
type EncryptionService struct {
	cipher cryptoService.TagCipher
	logger *slog.Logger
}

// NewEncryptionService creates an EncryptionService.
func NewEncryptionService(cipher cryptoService.TagCipher, logger *slog.Logger) *EncryptionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EncryptionService{cipher: cipher, logger: logger}
}

// Encrypt encodes and encrypts tags and annotations for storage.
func (s *EncryptionService) Encrypt(
	tags tagDomain.Tags,
	annotations []string,
	key *cryptoDomain.Key,
) ([]string, error) {
	list := ToTagList(tags, annotations)
	encrypted := make([]string, 0, len(list))
	for _, entry := range list {
		ciphertext, err := s.cipher.Encrypt(entry, key)
		if err != nil {
			return nil, err
		}
		encrypted = append(encrypted, ciphertext)
	}
	return encrypted, nil
}

// Decrypt decrypts and decodes a stored tag list. Entries that fail to decrypt are skipped.
func (s *EncryptionService) Decrypt(
	encrypted []string,
	key *cryptoDomain.Key,
) (tagDomain.Tags, []string) {
	list := make([]string, 0, len(encrypted))
	for _, ciphertext := range encrypted {
		entry, err := s.cipher.Decrypt(ciphertext, key)
		if err != nil {
			s.logger.Debug("skipping undecryptable tag", slog.Any("error", err))
			continue
		}
		list = append(list, entry)
	}
	return ToTagMap(list)
}

// EncryptSearchTags builds the tag query of a search. Each tag becomes the encrypted
// forms of all its encodings; several forms are sent as a "(a,b,c)" group that matches
// any of them.
func (s *EncryptionService) EncryptSearchTags(
	tags tagDomain.Tags,
	annotations []string,
	key *cryptoDomain.Key,
) ([]string, error) {
	list := ToTagList(tags, annotations)
	query := make([]string, 0, len(list))
	for _, entry := range list {
		variants := LegacyVariants(entry)
		encrypted := make([]string, 0, len(variants))
		for _, variant := range variants {
			ciphertext, err := s.cipher.Encrypt(variant, key)
			if err != nil {
				return nil, err
			}
			encrypted = append(encrypted, ciphertext)
		}

		if len(encrypted) == 1 {
			query = append(query, encrypted[0])
			continue
		}
		query = append(query, "("+strings.Join(encrypted, ",")+")")
	}
	return query, nil
}
