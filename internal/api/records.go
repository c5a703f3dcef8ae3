package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/allisson/phrsdk/internal/errors"
	recordDomain "github.com/allisson/phrsdk/internal/record/domain"
)

// Records stores encrypted record envelopes.
type Records struct {
	client *Client
}

// Records returns the record endpoints of c.
func (c *Client) Records() *Records {
	return &Records{client: c}
}

// Create stores a new envelope and returns it with the id and dates the backend assigned.
func (r *Records) Create(
	ctx context.Context,
	rec *recordDomain.EncryptedRecord,
) (*recordDomain.EncryptedRecord, error) {
	path, err := r.client.userPath(ctx, "records")
	if err != nil {
		return nil, err
	}
	return r.send(ctx, http.MethodPost, path, rec)
}

// Update replaces the envelope of an existing record.
func (r *Records) Update(
	ctx context.Context,
	rec *recordDomain.EncryptedRecord,
) (*recordDomain.EncryptedRecord, error) {
	if rec.ID == "" {
		return nil, recordDomain.ErrRecordIDRequired
	}
	path, err := r.client.userPath(ctx, "records", url.PathEscape(rec.ID))
	if err != nil {
		return nil, err
	}
	return r.send(ctx, http.MethodPut, path, rec)
}

func (r *Records) send(
	ctx context.Context,
	method, path string,
	rec *recordDomain.EncryptedRecord,
) (*recordDomain.EncryptedRecord, error) {
	req, err := jsonRequest(method, path, rec)
	if err != nil {
		return nil, err
	}
	_, body, err := r.client.do(ctx, req)
	if err != nil {
		return nil, recordError(err)
	}

	var stored recordDomain.EncryptedRecord
	if err := decodeJSON(body, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Get returns the envelope of one record.
func (r *Records) Get(ctx context.Context, recordID string) (*recordDomain.EncryptedRecord, error) {
	path, err := r.client.userPath(ctx, "records", url.PathEscape(recordID))
	if err != nil {
		return nil, err
	}

	_, body, err := r.client.do(ctx, request{method: http.MethodGet, path: path})
	if err != nil {
		return nil, recordError(err)
	}

	var rec recordDomain.EncryptedRecord
	if err := decodeJSON(body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Search returns one page of envelopes matching query and the total number of matches.
func (r *Records) Search(
	ctx context.Context,
	query recordDomain.SearchQuery,
) ([]*recordDomain.EncryptedRecord, int, error) {
	path, err := r.client.userPath(ctx, "records")
	if err != nil {
		return nil, 0, err
	}

	resp, body, err := r.client.do(ctx, request{method: http.MethodGet, path: path, query: searchParams(query)})
	if err != nil {
		return nil, 0, err
	}

	var records []*recordDomain.EncryptedRecord
	if err := decodeJSON(body, &records); err != nil {
		return nil, 0, err
	}
	total, err := totalCount(resp)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Count returns the number of envelopes matching query.
func (r *Records) Count(ctx context.Context, query recordDomain.SearchQuery) (int, error) {
	path, err := r.client.userPath(ctx, "records")
	if err != nil {
		return 0, err
	}

	resp, _, err := r.client.do(ctx, request{method: http.MethodHead, path: path, query: searchParams(query)})
	if err != nil {
		return 0, err
	}
	return totalCount(resp)
}

// Delete removes a record.
func (r *Records) Delete(ctx context.Context, recordID string) error {
	path, err := r.client.userPath(ctx, "records", url.PathEscape(recordID))
	if err != nil {
		return err
	}

	_, _, err = r.client.do(ctx, request{method: http.MethodDelete, path: path})
	return recordError(err)
}

func searchParams(query recordDomain.SearchQuery) url.Values {
	params := url.Values{}
	if len(query.Tags) > 0 {
		params.Set("tags", strings.Join(query.Tags, ","))
	}
	if query.StartDate != "" {
		params.Set("start_date", query.StartDate)
	}
	if query.EndDate != "" {
		params.Set("end_date", query.EndDate)
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		params.Set("offset", strconv.Itoa(query.Offset))
	}
	return params
}

func totalCount(resp *http.Response) (int, error) {
	value := resp.Header.Get(HeaderTotalCount)
	if value == "" {
		return 0, nil
	}
	total, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperrors.Wrapf(apperrors.ErrTransport, "malformed %s header %q", HeaderTotalCount, value)
	}
	return total, nil
}

func recordError(err error) error {
	if err != nil && apperrors.Is(err, apperrors.ErrNotFound) {
		return apperrors.Join(recordDomain.ErrRecordNotFound, err)
	}
	return err
}
