// Package repository provides the sandbox storage backends: in-memory, PostgreSQL and
// MySQL stores for accounts and record envelopes, plus memory and S3 document stores.
package repository

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
)

type commonKeyID struct {
	userID uuid.UUID
	id     string
}

// MemoryUserRepository keeps accounts in process memory.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]sandboxDomain.User
	commonKeys map[commonKeyID]sandboxDomain.CommonKey
}

// NewMemoryUserRepository creates an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:      make(map[uuid.UUID]sandboxDomain.User),
		commonKeys: make(map[commonKeyID]sandboxDomain.CommonKey),
	}
}

func (m *MemoryUserRepository) Create(_ context.Context, user *sandboxDomain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	u.PublicKey = slices.Clone(user.PublicKey)
	m.users[user.ID] = u
	return nil
}

func (m *MemoryUserRepository) Get(_ context.Context, id uuid.UUID) (*sandboxDomain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sandboxDomain.ErrUserNotFound
	}
	u.PublicKey = slices.Clone(u.PublicKey)
	return &u, nil
}

func (m *MemoryUserRepository) SaveCommonKey(_ context.Context, key *sandboxDomain.CommonKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commonKeys[commonKeyID{userID: key.UserID, id: key.ID}] = *key
	return nil
}

func (m *MemoryUserRepository) GetCommonKey(
	_ context.Context,
	userID uuid.UUID,
	id string,
) (*sandboxDomain.CommonKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.commonKeys[commonKeyID{userID: userID, id: id}]
	if !ok {
		return nil, sandboxDomain.ErrCommonKeyNotFound
	}
	return &key, nil
}

// MemoryRecordRepository keeps record envelopes in process memory.
type MemoryRecordRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]sandboxDomain.Record
}

// NewMemoryRecordRepository creates an empty MemoryRecordRepository.
func NewMemoryRecordRepository() *MemoryRecordRepository {
	return &MemoryRecordRepository{records: make(map[uuid.UUID]sandboxDomain.Record)}
}

func copyRecord(r *sandboxDomain.Record) sandboxDomain.Record {
	c := *r
	c.EncryptedTags = slices.Clone(r.EncryptedTags)
	return c
}

func (m *MemoryRecordRepository) Create(_ context.Context, record *sandboxDomain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = copyRecord(record)
	return nil
}

func (m *MemoryRecordRepository) Update(_ context.Context, record *sandboxDomain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.records[record.ID]
	if !ok || existing.UserID != record.UserID {
		return sandboxDomain.ErrRecordNotFound
	}
	m.records[record.ID] = copyRecord(record)
	return nil
}

func (m *MemoryRecordRepository) Get(_ context.Context, userID, id uuid.UUID) (*sandboxDomain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok || r.UserID != userID {
		return nil, sandboxDomain.ErrRecordNotFound
	}
	c := copyRecord(&r)
	return &c, nil
}

// matching returns the records passing filter, newest first.
func (m *MemoryRecordRepository) matching(filter sandboxDomain.RecordFilter) []*sandboxDomain.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*sandboxDomain.Record
	for _, r := range m.records {
		if filter.Matches(&r) {
			c := copyRecord(&r)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (m *MemoryRecordRepository) Search(
	_ context.Context,
	filter sandboxDomain.RecordFilter,
) ([]*sandboxDomain.Record, int, error) {
	all := m.matching(filter)
	total := len(all)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return all[start:end], total, nil
}

func (m *MemoryRecordRepository) Count(_ context.Context, filter sandboxDomain.RecordFilter) (int, error) {
	return len(m.matching(filter)), nil
}

func (m *MemoryRecordRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok || r.UserID != userID {
		return sandboxDomain.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}
