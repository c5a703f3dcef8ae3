package dto

import (
	"time"

	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
	sandboxUseCase "github.com/allisson/phrsdk/internal/sandbox/usecase"
)

// updatedDateLayout matches the update date format the record client parses.
const updatedDateLayout = "2006-01-02T15:04:05.000000"

// RegisterResponse carries the credentials of a new account. The secret is returned
// only once.
type RegisterResponse struct {
	UserID       string `json:"user_id"`
	ClientSecret string `json:"client_secret"` //nolint:gosec // returned once on creation
}

// MapCredentialsToResponse converts registration credentials.
func MapCredentialsToResponse(creds *sandboxUseCase.Credentials) RegisterResponse {
	return RegisterResponse{UserID: creds.UserID.String(), ClientSecret: creds.ClientSecret}
}

// TokenResponse is the OAuth token endpoint response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// MapTokenToResponse converts an issued token relative to now.
func MapTokenToResponse(token *sandboxUseCase.AccessToken, now time.Time) TokenResponse {
	return TokenResponse{
		AccessToken: token.Token,
		TokenType:   "Bearer",
		ExpiresIn:   max(int(token.ExpiresAt.Sub(now).Seconds()), 0),
	}
}

// UserInfoResponse describes the authenticated account.
type UserInfoResponse struct {
	Sub              string `json:"sub"`
	CommonKeyID      string `json:"common_key_id"`
	CommonKey        string `json:"common_key"`
	TagEncryptionKey string `json:"tag_encryption_key"`
}

// MapUserInfoToResponse converts account info.
func MapUserInfoToResponse(info *sandboxUseCase.UserInfo) UserInfoResponse {
	return UserInfoResponse{
		Sub:              info.UserID.String(),
		CommonKeyID:      info.CommonKeyID,
		CommonKey:        info.CommonKey,
		TagEncryptionKey: info.TagEncryptionKey,
	}
}

// CommonKeyResponse carries one wrapped common key.
type CommonKeyResponse struct {
	CommonKey string `json:"common_key"`
}

// RecordResponse is a stored record envelope.
type RecordResponse struct {
	ID            string   `json:"record_id"`
	CommonKeyID   string   `json:"common_key_id"`
	EncryptedTags []string `json:"encrypted_tags"`
	EncryptedBody string   `json:"encrypted_body"`
	Date          string   `json:"date"`
	EncryptedKey  string   `json:"encrypted_key"`
	AttachmentKey string   `json:"attachment_key,omitempty"`
	ModelVersion  int      `json:"model_version"`
	UpdatedDate   string   `json:"createdAt"`
	Status        string   `json:"status,omitempty"`
}

// MapRecordToResponse converts a stored record.
func MapRecordToResponse(record *sandboxDomain.Record) RecordResponse {
	tags := record.EncryptedTags
	if tags == nil {
		tags = []string{}
	}
	return RecordResponse{
		ID:            record.ID.String(),
		CommonKeyID:   record.CommonKeyID,
		EncryptedTags: tags,
		EncryptedBody: record.EncryptedBody,
		Date:          record.Date,
		EncryptedKey:  record.EncryptedKey,
		AttachmentKey: record.AttachmentKey,
		ModelVersion:  record.ModelVersion,
		UpdatedDate:   record.UpdatedAt.UTC().Format(updatedDateLayout),
		Status:        record.Status,
	}
}

// MapRecordsToResponse converts a page of stored records.
func MapRecordsToResponse(records []*sandboxDomain.Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, MapRecordToResponse(r))
	}
	return out
}

// DocumentResponse carries the id of an uploaded document.
type DocumentResponse struct {
	DocumentID string `json:"document_id"`
}
