package api

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	apperrors "github.com/allisson/phrsdk/internal/errors"
)

// TokenProvider hands out bearer tokens. Refresh is called once when the backend rejects
// the current token.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider for a token obtained elsewhere. It cannot refresh.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, "no access token")
	}
	return string(s), nil
}

func (s StaticToken) Refresh(context.Context) (string, error) {
	return "", apperrors.Wrap(apperrors.ErrUnauthorized, "access token expired")
}

// tokenResponse is the OAuth token endpoint answer.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// IssueToken exchanges the credentials of a registered account for an access token.
func (c *Client) IssueToken(ctx context.Context, account Account) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", account.ClientID)
	form.Set("username", account.UserID)
	form.Set("password", account.ClientSecret)

	_, body, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/oauth/token",
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		anonymous:   true,
	})
	if err != nil {
		return nil, err
	}

	var resp tokenResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, apperrors.Wrap(apperrors.ErrTransport, "token response without access_token")
	}
	return &Token{
		AccessToken: resp.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}

// AccountCredentials is a TokenProvider that logs in with the credentials of an account
// and logs in again when the token expires or is rejected.
type AccountCredentials struct {
	client  *Client
	account Account

	mu    sync.Mutex
	token *Token
}

// NewAccountCredentials creates an AccountCredentials provider issuing tokens through client.
func NewAccountCredentials(client *Client, account Account) *AccountCredentials {
	return &AccountCredentials{client: client, account: account}
}

func (p *AccountCredentials) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != nil && time.Now().Before(p.token.ExpiresAt) {
		return p.token.AccessToken, nil
	}
	return p.issue(ctx)
}

func (p *AccountCredentials) Refresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.issue(ctx)
}

func (p *AccountCredentials) issue(ctx context.Context) (string, error) {
	token, err := p.client.IssueToken(ctx, p.account)
	if err != nil {
		return "", err
	}
	p.token = token
	return token.AccessToken, nil
}
