// Package dto provides the request and response bodies of the sandbox HTTP API.
package dto

import (
	"encoding/base64"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
	sandboxUseCase "github.com/allisson/phrsdk/internal/sandbox/usecase"
	customValidation "github.com/allisson/phrsdk/internal/validation"
)

// dateLayout is the format of record creation dates.
const dateLayout = "2006-01-02"

// RegisterRequest creates an account.
type RegisterRequest struct {
	ClientID         string `json:"client_id"`
	PublicKey        string `json:"public_key"`
	CommonKeyID      string `json:"common_key_id"`
	CommonKey        string `json:"common_key"`
	TagEncryptionKey string `json:"tag_encryption_key"`
}

// Validate checks the registration request.
func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientID, validation.Required, customValidation.ClientID),
		validation.Field(&r.PublicKey, validation.Required, customValidation.Base64),
		validation.Field(&r.CommonKeyID, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.CommonKey, validation.Required, customValidation.Base64),
		validation.Field(&r.TagEncryptionKey, validation.Required, customValidation.Base64),
	)
}

// ToRegistration converts a validated request.
func (r *RegisterRequest) ToRegistration() sandboxUseCase.Registration {
	publicKey, _ := base64.StdEncoding.DecodeString(r.PublicKey)
	return sandboxUseCase.Registration{
		ClientID:         r.ClientID,
		PublicKey:        publicKey,
		CommonKeyID:      r.CommonKeyID,
		CommonKey:        r.CommonKey,
		TagEncryptionKey: r.TagEncryptionKey,
	}
}

// TokenRequest is the form body of the token endpoint.
type TokenRequest struct {
	GrantType string `form:"grant_type"`
	ClientID  string `form:"client_id"`
	Username  string `form:"username"`
	Password  string `form:"password"`
}

// Validate checks the token request. Only the password grant is supported.
func (r *TokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.GrantType, validation.Required, validation.In("password")),
		validation.Field(&r.Username, validation.Required, validation.By(isUUID)),
		validation.Field(&r.Password, validation.Required),
	)
}

func isUUID(value any) error {
	s, _ := value.(string)
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	return nil
}

// RecordRequest is the record envelope sent on create and update.
type RecordRequest struct {
	ID            string   `json:"record_id,omitempty"`
	CommonKeyID   string   `json:"common_key_id"`
	EncryptedTags []string `json:"encrypted_tags"`
	EncryptedBody string   `json:"encrypted_body"`
	Date          string   `json:"date"`
	EncryptedKey  string   `json:"encrypted_key"`
	AttachmentKey string   `json:"attachment_key,omitempty"`
	ModelVersion  int      `json:"model_version"`
	Status        string   `json:"status,omitempty"`
}

// Validate checks the envelope. Bodies and keys are opaque to the sandbox, so only their
// presence and encoding are checked.
func (r *RecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CommonKeyID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.EncryptedTags, validation.Each(validation.Required, validation.Length(1, 512))),
		validation.Field(&r.EncryptedBody, validation.Required, customValidation.Base64),
		validation.Field(&r.Date, validation.Required, validation.Date(dateLayout)),
		validation.Field(&r.EncryptedKey, validation.Required, customValidation.Base64),
		validation.Field(&r.AttachmentKey, customValidation.Base64),
		validation.Field(&r.ModelVersion, validation.Min(0)),
	)
}

// ToRecord converts a validated request for userID.
func (r *RecordRequest) ToRecord(userID uuid.UUID) *sandboxDomain.Record {
	return &sandboxDomain.Record{
		UserID:        userID,
		CommonKeyID:   r.CommonKeyID,
		EncryptedTags: r.EncryptedTags,
		EncryptedBody: r.EncryptedBody,
		Date:          r.Date,
		EncryptedKey:  r.EncryptedKey,
		AttachmentKey: r.AttachmentKey,
		ModelVersion:  r.ModelVersion,
		Status:        r.Status,
	}
}

// SearchRequest holds the query parameters of record search and count.
type SearchRequest struct {
	Tags      string `form:"tags"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// Validate checks the date bounds.
func (r *SearchRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.StartDate, validation.Date(dateLayout)),
		validation.Field(&r.EndDate, validation.Date(dateLayout)),
	)
}

// ToFilter converts a validated request. Tag groups are parsed here so a malformed tags
// value is reported as invalid input.
func (r *SearchRequest) ToFilter(userID uuid.UUID, offset, limit int) (sandboxDomain.RecordFilter, error) {
	groups, err := sandboxDomain.ParseTagQuery(r.Tags)
	if err != nil {
		return sandboxDomain.RecordFilter{}, err
	}
	return sandboxDomain.RecordFilter{
		UserID:    userID,
		TagGroups: groups,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Limit:     limit,
		Offset:    offset,
	}, nil
}
