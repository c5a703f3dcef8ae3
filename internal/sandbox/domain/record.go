package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is a stored record envelope. Only ID and UpdatedAt are assigned by the sandbox.
type Record struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	CommonKeyID   string
	EncryptedTags []string
	EncryptedBody string
	Date          string
	EncryptedKey  string
	AttachmentKey string
	ModelVersion  int
	Status        string
	UpdatedAt     time.Time
}

// MatchesTags reports whether the record carries at least one tag of every group.
func (r *Record) MatchesTags(groups [][]string) bool {
	have := make(map[string]struct{}, len(r.EncryptedTags))
	for _, tag := range r.EncryptedTags {
		have[tag] = struct{}{}
	}
	for _, group := range groups {
		matched := false
		for _, tag := range group {
			if _, ok := have[tag]; ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// InDateRange reports whether the record date lies within [start, end]. Empty bounds are
// open. Dates compare lexically as they are "YYYY-MM-DD".
func (r *Record) InDateRange(start, end string) bool {
	if start != "" && r.Date < start {
		return false
	}
	if end != "" && r.Date > end {
		return false
	}
	return true
}

// RecordFilter selects the records of one user.
type RecordFilter struct {
	UserID    uuid.UUID
	TagGroups [][]string
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

// Matches reports whether r passes the tag and date conditions of f.
func (f RecordFilter) Matches(r *Record) bool {
	return r.UserID == f.UserID && r.MatchesTags(f.TagGroups) && r.InDateRange(f.StartDate, f.EndDate)
}

// ParseTagQuery splits a "tags" query value into OR-groups. Tags are separated by
// commas; a parenthesised list of tags forms one group matching any of its members.
func ParseTagQuery(value string) ([][]string, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	var groups [][]string
	var group []string
	var current strings.Builder
	inGroup := false

	flush := func() error {
		tag := strings.TrimSpace(current.String())
		current.Reset()
		if tag == "" {
			return ErrMalformedTagQuery
		}
		if inGroup {
			group = append(group, tag)
			return nil
		}
		groups = append(groups, []string{tag})
		return nil
	}

	for i := 0; i < len(value); i++ {
		switch c := value[i]; c {
		case '(':
			if inGroup || strings.TrimSpace(current.String()) != "" {
				return nil, ErrMalformedTagQuery
			}
			inGroup = true
			group = nil
		case ')':
			if !inGroup {
				return nil, ErrMalformedTagQuery
			}
			if err := flush(); err != nil {
				return nil, err
			}
			groups = append(groups, group)
			inGroup = false
			if i+1 < len(value) && value[i+1] != ',' {
				return nil, ErrMalformedTagQuery
			}
			i++
		case ',':
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			current.WriteByte(c)
		}
	}

	if inGroup {
		return nil, ErrMalformedTagQuery
	}
	if current.Len() > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}
	return groups, nil
}
