// Package validation holds the jellydator/validation rules shared by the client
// configuration, search criteria and the sandbox request DTOs.
package validation

import (
	"encoding/base64"
	"net/url"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/phrsdk/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// ClientID validates the "<partnerId>#<platform>" form of a client id.
var ClientID = validation.NewStringRuleWithError(
	func(s string) bool {
		partner, platform, found := strings.Cut(s, "#")
		return found && strings.TrimSpace(partner) != "" && strings.TrimSpace(platform) != ""
	},
	validation.NewError("validation_client_id", "must have the form <partner>#<platform>"),
)

// HTTPURL validates an absolute http or https URL.
var HTTPURL = validation.NewStringRuleWithError(
	func(s string) bool {
		u, err := url.Parse(s)
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	},
	validation.NewError("validation_http_url", "must be an absolute http(s) URL"),
)

// Base64 validates standard base64, the encoding of every key and ciphertext on the wire.
// Empty strings pass; pair it with validation.Required.
var Base64 = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := base64.StdEncoding.DecodeString(s)
		return err == nil
	},
	validation.NewError("validation_base64", "must be valid base64-encoded data"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
