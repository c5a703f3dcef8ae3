package api

import (
	"context"
	"net/http"
	"net/url"

	apperrors "github.com/allisson/phrsdk/internal/errors"
)

type documentResponse struct {
	DocumentID string `json:"document_id"`
}

// Documents stores encrypted attachment payloads.
type Documents struct {
	client *Client
}

// Documents returns the document endpoints of c.
func (c *Client) Documents() *Documents {
	return &Documents{client: c}
}

// Upload stores an encrypted attachment payload and returns its document id.
func (d *Documents) Upload(ctx context.Context, data []byte) (string, error) {
	path, err := d.client.userPath(ctx, "documents")
	if err != nil {
		return "", err
	}

	_, body, err := d.client.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        data,
		contentType: "application/octet-stream",
	})
	if err != nil {
		return "", err
	}

	var resp documentResponse
	if err := decodeJSON(body, &resp); err != nil {
		return "", err
	}
	if resp.DocumentID == "" {
		return "", apperrors.Wrap(apperrors.ErrTransport, "upload response without document_id")
	}
	return resp.DocumentID, nil
}

// Download returns the encrypted payload of a document.
func (d *Documents) Download(ctx context.Context, documentID string) ([]byte, error) {
	path, err := d.client.userPath(ctx, "documents", url.PathEscape(documentID))
	if err != nil {
		return nil, err
	}

	_, body, err := d.client.do(ctx, request{method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Delete removes a document.
func (d *Documents) Delete(ctx context.Context, documentID string) error {
	path, err := d.client.userPath(ctx, "documents", url.PathEscape(documentID))
	if err != nil {
		return err
	}

	_, _, err = d.client.do(ctx, request{method: http.MethodDelete, path: path})
	return err
}
