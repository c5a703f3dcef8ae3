package validation

import (
	"errors"
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/phrsdk/internal/errors"
)

func TestRules(t *testing.T) {
	tests := []struct {
		name      string
		rule      validation.Rule
		input     string
		shouldErr bool
	}{
		{name: "client id with platform", rule: ClientID, input: "partner#android"},
		{name: "client id without separator", rule: ClientID, input: "partner", shouldErr: true},
		{name: "client id with blank partner", rule: ClientID, input: " #android", shouldErr: true},
		{name: "client id with blank platform", rule: ClientID, input: "partner#", shouldErr: true},
		{name: "https url", rule: HTTPURL, input: "https://api.example.com"},
		{name: "http url with port", rule: HTTPURL, input: "http://127.0.0.1:8080/base"},
		{name: "url without scheme", rule: HTTPURL, input: "api.example.com", shouldErr: true},
		{name: "url with other scheme", rule: HTTPURL, input: "ftp://example.com", shouldErr: true},
		{name: "base64 key", rule: Base64, input: "c2VjcmV0LWtleQ=="},
		{name: "base64 empty", rule: Base64, input: ""},
		{name: "base64 url alphabet", rule: Base64, input: "c2Vj_-Jl", shouldErr: true},
		{name: "base64 bad padding", rule: Base64, input: "abc", shouldErr: true},
		{name: "not blank", rule: NotBlank, input: "key-1"},
		{name: "blank spaces", rule: NotBlank, input: "   ", shouldErr: true},
		{name: "blank mixed whitespace", rule: NotBlank, input: " \t\n ", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(errors.New("limit: must be no greater than 100"))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "limit: must be no greater than 100")
}
