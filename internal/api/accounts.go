package api

import (
	"context"
	"encoding/base64"
	"net/http"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
	apperrors "github.com/allisson/phrsdk/internal/errors"
)

type registerRequest struct {
	ClientID         string                    `json:"client_id"`
	PublicKey        string                    `json:"public_key"`
	CommonKeyID      string                    `json:"common_key_id"`
	CommonKey        cryptoDomain.EncryptedKey `json:"common_key"`
	TagEncryptionKey cryptoDomain.EncryptedKey `json:"tag_encryption_key"`
}

type registerResponse struct {
	UserID       string `json:"user_id"`
	ClientSecret string `json:"client_secret"`
}

// Account is a newly registered user together with the credentials to log in with.
type Account struct {
	UserID       string
	ClientID     string
	ClientSecret string
}

// Register creates a user from the key material produced by the key bootstrap.
func (c *Client) Register(
	ctx context.Context,
	clientID string,
	registration *cryptoDomain.Registration,
) (*Account, error) {
	req, err := jsonRequest(http.MethodPost, "/users", registerRequest{
		ClientID:         clientID,
		PublicKey:        base64.StdEncoding.EncodeToString(registration.PublicKey),
		CommonKeyID:      registration.CommonKeyID,
		CommonKey:        registration.EncryptedCommonKey,
		TagEncryptionKey: registration.EncryptedTagKey,
	})
	if err != nil {
		return nil, err
	}
	req.anonymous = true

	_, body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp registerResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, err
	}
	if resp.UserID == "" || resp.ClientSecret == "" {
		return nil, apperrors.Wrap(apperrors.ErrTransport, "registration response is incomplete")
	}
	c.rememberUserID(resp.UserID)
	return &Account{UserID: resp.UserID, ClientID: clientID, ClientSecret: resp.ClientSecret}, nil
}
