package api

import (
	"context"
	"net/http"
	"net/url"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
	apperrors "github.com/allisson/phrsdk/internal/errors"
)

type userInfoResponse struct {
	Sub              string                    `json:"sub"`
	CommonKeyID      string                    `json:"common_key_id"`
	CommonKey        cryptoDomain.EncryptedKey `json:"common_key"`
	TagEncryptionKey cryptoDomain.EncryptedKey `json:"tag_encryption_key"`
}

type commonKeyResponse struct {
	CommonKey cryptoDomain.EncryptedKey `json:"common_key"`
}

func (c *Client) fetchUserInfo(ctx context.Context) (*userInfoResponse, error) {
	_, body, err := c.do(ctx, request{method: http.MethodGet, path: "/userinfo"})
	if err != nil {
		return nil, err
	}

	var info userInfoResponse
	if err := decodeJSON(body, &info); err != nil {
		return nil, err
	}
	if info.Sub == "" {
		return nil, apperrors.Wrap(apperrors.ErrTransport, "userinfo without sub")
	}
	c.rememberUserID(info.Sub)
	return &info, nil
}

// FetchUserInfo returns the wrapped current common key and tag key of the signed-in user.
func (c *Client) FetchUserInfo(ctx context.Context) (*cryptoDomain.UserInfo, error) {
	info, err := c.fetchUserInfo(ctx)
	if err != nil {
		return nil, err
	}
	return &cryptoDomain.UserInfo{
		UserID:             info.Sub,
		CommonKeyID:        info.CommonKeyID,
		EncryptedCommonKey: info.CommonKey,
		EncryptedTagKey:    info.TagEncryptionKey,
	}, nil
}

// FetchCommonKey returns the common key with id commonKeyID wrapped with the account key.
func (c *Client) FetchCommonKey(ctx context.Context, commonKeyID string) (cryptoDomain.EncryptedKey, error) {
	path, err := c.userPath(ctx, "commonkeys", url.PathEscape(commonKeyID))
	if err != nil {
		return "", err
	}

	_, body, err := c.do(ctx, request{method: http.MethodGet, path: path})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.Wrap(cryptoDomain.ErrKeyNotFound, err.Error())
		}
		return "", err
	}

	var resp commonKeyResponse
	if err := decodeJSON(body, &resp); err != nil {
		return "", err
	}
	return resp.CommonKey, nil
}
