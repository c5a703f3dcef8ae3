// Package phrsdk is a client for a personal health record backend with end-to-end
// encryption.
//
// Records hold a FHIR STU3 resource, a FHIR R4 resource or arbitrary data. The client
// encrypts the resource, its tags and its attachments before anything leaves the process
// and decrypts them on the way back, so the backend only ever stores ciphertext.
//
// Every method returns errors as *Error, whose Kind tells validation failures apart from
// transport, crypto and authorization failures. Batch calls never fail as a whole; they
// report per-id failures in a BatchResult.
package phrsdk

import (
	"context"
	"time"

	"github.com/allisson/phrsdk/internal/api"
	"github.com/allisson/phrsdk/internal/app"
	"github.com/allisson/phrsdk/internal/config"
	cryptoUseCase "github.com/allisson/phrsdk/internal/crypto/usecase"
	apperrors "github.com/allisson/phrsdk/internal/errors"
	recordUseCase "github.com/allisson/phrsdk/internal/record/usecase"
)

// sessionStore keeps the access token of the last login.
type sessionStore interface {
	SaveSession(ctx context.Context, userID, accessToken string) error
}

// Client is safe for concurrent use. Close releases the local key store.
type Client struct {
	container *app.Container
	clientID  string
	api       *api.Client
	keys      cryptoUseCase.KeyUseCase
	sessions  sessionStore
	records   recordUseCase.RecordUseCase
}

// New creates a client from the environment configuration and opts.
func New(opts ...Option) (*Client, error) {
	s := &settings{config: config.Load()}
	for _, opt := range opts {
		opt(s)
	}

	container := app.NewContainer(s.config)
	if s.logger != nil {
		container.SetLogger(s.logger)
	}

	client, err := newClient(container, s.config.ClientID)
	if err != nil {
		_ = container.Shutdown(context.Background())
		return nil, apperrors.Classify("new", err)
	}
	return client, nil
}

func newClient(container *app.Container, clientID string) (*Client, error) {
	apiClient, err := container.APIClient()
	if err != nil {
		return nil, err
	}
	store, err := container.KeyStore()
	if err != nil {
		return nil, err
	}
	keys, err := container.KeyUseCase()
	if err != nil {
		return nil, err
	}
	records, err := container.RecordUseCase()
	if err != nil {
		return nil, err
	}

	return &Client{
		container: container,
		clientID:  clientID,
		api:       apiClient,
		keys:      keys,
		sessions:  store,
		records:   records,
	}, nil
}

// Close flushes and closes the local key store.
func (c *Client) Close(ctx context.Context) error {
	return apperrors.Classify("close", c.container.Shutdown(ctx))
}

// Register creates a new account. It generates the account key pair together with the
// first common key and tag key, uploads them and logs in with the issued credentials.
// The returned client secret is needed for every later Login.
func (c *Client) Register(ctx context.Context) (*Account, error) {
	registration, err := c.keys.Bootstrap(ctx)
	if err != nil {
		return nil, apperrors.Classify("register", err)
	}

	account, err := c.api.Register(ctx, c.clientID, registration)
	if err != nil {
		return nil, apperrors.Classify("register", err)
	}

	if err := c.login(ctx, *account); err != nil {
		return nil, apperrors.Classify("register", err)
	}
	return account, nil
}

// Login exchanges the credentials of a registered account for a session. Expired tokens
// are renewed with the same credentials for the lifetime of the client.
func (c *Client) Login(ctx context.Context, userID, clientSecret string) error {
	account := Account{UserID: userID, ClientID: c.clientID, ClientSecret: clientSecret}
	return apperrors.Classify("login", c.login(ctx, account))
}

func (c *Client) login(ctx context.Context, account Account) error {
	credentials := api.NewAccountCredentials(c.api, account)
	token, err := credentials.Token(ctx)
	if err != nil {
		return err
	}
	if err := c.sessions.SaveSession(ctx, account.UserID, token); err != nil {
		return err
	}
	c.api.SetTokenProvider(credentials)
	return nil
}

// SetTokenProvider makes the client authenticate with tokens from provider, for
// applications that run their own OAuth flow.
func (c *Client) SetTokenProvider(provider TokenProvider) {
	c.api.SetTokenProvider(provider)
}

// Logout drops the session and every key kept on this device. Records stay readable
// after the next Login only if the account key pair is restored.
func (c *Client) Logout(ctx context.Context) error {
	c.api.SetTokenProvider(api.StaticToken(""))
	return apperrors.Classify("logout", c.keys.Logout(ctx))
}

// UserID returns the id of the signed-in user.
func (c *Client) UserID(ctx context.Context) (string, error) {
	userID, err := c.api.UserID(ctx)
	return userID, apperrors.Classify("user_id", err)
}

// CreateRecord encrypts and stores resource. A nil creationDate means today.
func (c *Client) CreateRecord(
	ctx context.Context,
	resource Resource,
	annotations []string,
	creationDate *time.Time,
) (*Record, error) {
	record, err := c.records.Create(ctx, resource, annotations, creationDate)
	return record, apperrors.Classify("create_record", err)
}

// UpdateRecord replaces the resource and annotations of a record. Attachments that keep
// their id and carry no data stay as they are.
func (c *Client) UpdateRecord(
	ctx context.Context,
	recordID string,
	resource Resource,
	annotations []string,
) (*Record, error) {
	record, err := c.records.Update(ctx, recordID, resource, annotations)
	return record, apperrors.Classify("update_record", err)
}

// FetchRecord returns a record. Attachment payloads are not downloaded.
func (c *Client) FetchRecord(ctx context.Context, recordID string) (*Record, error) {
	record, err := c.records.Fetch(ctx, recordID)
	return record, apperrors.Classify("fetch_record", err)
}

// FetchRecords fetches every id independently.
func (c *Client) FetchRecords(ctx context.Context, recordIDs []string) *BatchResult[*Record] {
	return classifyBatch("fetch_records", c.records.FetchBatch(ctx, recordIDs))
}

// SearchRecords returns one page of the records matching criteria.
func (c *Client) SearchRecords(ctx context.Context, criteria SearchCriteria) (*SearchResult, error) {
	result, err := c.records.Search(ctx, criteria)
	return result, apperrors.Classify("search_records", err)
}

// CountRecords returns how many records match criteria.
func (c *Client) CountRecords(ctx context.Context, criteria SearchCriteria) (int, error) {
	count, err := c.records.Count(ctx, criteria)
	return count, apperrors.Classify("count_records", err)
}

// DeleteRecord removes a record. Its attachment documents are left on the backend.
func (c *Client) DeleteRecord(ctx context.Context, recordID string) error {
	return apperrors.Classify("delete_record", c.records.Delete(ctx, recordID))
}

// DeleteRecords deletes every id independently.
func (c *Client) DeleteRecords(ctx context.Context, recordIDs []string) *BatchResult[string] {
	return classifyBatch("delete_records", c.records.DeleteBatch(ctx, recordIDs))
}

// DownloadRecord returns a record with the payload of every attachment.
func (c *Client) DownloadRecord(
	ctx context.Context,
	recordID string,
	downloadType DownloadType,
) (*Record, error) {
	record, err := c.records.Download(ctx, recordID, downloadType)
	return record, apperrors.Classify("download_record", err)
}

// DownloadRecords downloads every id independently.
func (c *Client) DownloadRecords(
	ctx context.Context,
	recordIDs []string,
	downloadType DownloadType,
) *BatchResult[*Record] {
	return classifyBatch("download_records", c.records.DownloadBatch(ctx, recordIDs, downloadType))
}

// DownloadAttachment returns one attachment of a record with its payload.
func (c *Client) DownloadAttachment(
	ctx context.Context,
	recordID, attachmentID string,
	downloadType DownloadType,
) (*Attachment, error) {
	attachment, err := c.records.DownloadAttachment(ctx, recordID, attachmentID, downloadType)
	return attachment, apperrors.Classify("download_attachment", err)
}

// DownloadAttachments returns the listed attachments of a record with their payloads.
func (c *Client) DownloadAttachments(
	ctx context.Context,
	recordID string,
	attachmentIDs []string,
	downloadType DownloadType,
) ([]*Attachment, error) {
	attachments, err := c.records.DownloadAttachments(ctx, recordID, attachmentIDs, downloadType)
	return attachments, apperrors.Classify("download_attachments", err)
}

func classifyBatch[T any](op string, result *BatchResult[T]) *BatchResult[T] {
	for i := range result.Failures {
		result.Failures[i].Err = apperrors.Classify(op, result.Failures[i].Err)
	}
	return result
}
