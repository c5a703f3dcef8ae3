// Package integration runs the SDK client end to end against a sandbox backed by
// PostgreSQL and MySQL. Each driver is skipped when its test database is unreachable.
package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/phrsdk"
	"github.com/allisson/phrsdk/internal/app"
	"github.com/allisson/phrsdk/internal/config"
	"github.com/allisson/phrsdk/internal/database"
	"github.com/allisson/phrsdk/internal/fhir"
	"github.com/allisson/phrsdk/internal/fhir/fhir4"
	"github.com/allisson/phrsdk/internal/testutil"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var letter = []byte("%PDF-1.4 referral letter")

// integrationTestContext holds the sandbox under test.
type integrationTestContext struct {
	db       *sql.DB
	server   *httptest.Server
	dbDriver string
}

// setupIntegrationTest migrates the test database of dbDriver and serves a sandbox on it.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	var db *sql.DB
	var dsn string
	if dbDriver == database.DriverPostgres {
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	} else {
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	}

	cfg := &config.Config{
		ServerHost:           "127.0.0.1",
		ServerPort:           8080,
		DBDriver:             dbDriver,
		DBConnectionString:   dsn,
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    time.Hour,
		BlobStore:            "memory",
		DocumentMaxSize:      20 << 20,
		AuthJWTSecret:        strings.Repeat("s", 32),
		AuthTokenExpiration:  time.Hour,
		LogLevel:             "error",
		MetricsNamespace:     "phrsdk_integration",
	}
	container := app.NewContainer(cfg)
	container.SetLogger(logger)

	server, err := container.HTTPServer(context.Background())
	require.NoError(t, err, "failed to build sandbox server")

	ts := httptest.NewServer(server.GetHandler())

	t.Cleanup(func() {
		ts.Close()
		_ = container.Shutdown(context.Background())
		if dbDriver == database.DriverPostgres {
			testutil.CleanupPostgresDB(t, db)
		} else {
			testutil.CleanupMySQLDB(t, db)
		}
		testutil.TeardownDB(t, db)
	})

	return &integrationTestContext{db: db, server: ts, dbDriver: dbDriver}
}

// newClient builds a client whose key store lives in keystoreDir, sealed by keyURI.
func (ctx *integrationTestContext) newClient(t *testing.T, keystoreDir, keyURI string) *phrsdk.Client {
	t.Helper()

	client, err := phrsdk.New(
		phrsdk.WithBaseURL(ctx.server.URL),
		phrsdk.WithClientID("integration#go"),
		phrsdk.WithAccessToken(""),
		phrsdk.WithKeyStore(keystoreDir, keyURI),
		phrsdk.WithRateLimit(0, 0),
		phrsdk.WithMetrics(false),
		phrsdk.WithLogger(logger),
	)
	require.NoError(t, err, "failed to create client")
	return client
}

func (ctx *integrationTestContext) countRows(t *testing.T, table string) int {
	t.Helper()

	var count int
	//nolint:gosec // table names are constants of this file
	err := ctx.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
	require.NoError(t, err)
	return count
}

func TestIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	for _, driver := range []string{database.DriverPostgres, database.DriverMySQL} {
		t.Run(driver, func(t *testing.T) {
			itc := setupIntegrationTest(t, driver)

			t.Run("Readiness", func(t *testing.T) {
				resp, err := http.Get(itc.server.URL + "/ready") //nolint:noctx // test request
				require.NoError(t, err)
				defer func() { _ = resp.Body.Close() }()

				var body struct {
					Status     string            `json:"status"`
					Components map[string]string `json:"components"`
				}
				require.Equal(t, http.StatusOK, resp.StatusCode)
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "ready", body.Status)
				assert.Equal(t, "ok", body.Components["database"])
			})

			t.Run("RecordLifecycle", func(t *testing.T) {
				testRecordLifecycle(t, itc)
			})

			t.Run("PersistentKeyStore", func(t *testing.T) {
				testPersistentKeyStore(t, itc)
			})
		})
	}
}

func testRecordLifecycle(t *testing.T, itc *integrationTestContext) {
	ctx := context.Background()
	client := itc.newClient(t, "", "")
	defer func() { _ = client.Close(ctx) }()

	account, err := client.Register(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, itc.countRows(t, "common_keys"))

	doc := &fhir4.DocumentReference{
		Status: "current",
		Content: []fhir4.DocumentReferenceContent{
			{Attachment: fhir.Attachment{ContentType: "application/pdf", Title: "referral", Data: letter}},
		},
	}
	created, err := client.CreateRecord(ctx, phrsdk.NewFhir4Resource(doc), []string{"referral", "cardiology"}, nil)
	require.NoError(t, err)

	_, err = client.CreateRecord(ctx, phrsdk.NewDataResource([]byte(`{"pulse":62}`)), []string{"vitals"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, itc.countRows(t, "records"))

	t.Run("Search", func(t *testing.T) {
		result, err := client.SearchRecords(ctx, phrsdk.SearchCriteria{Annotations: []string{"cardiology"}})
		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		assert.Equal(t, created.ID, result.Records[0].ID)
		assert.ElementsMatch(t, []string{"referral", "cardiology"}, result.Records[0].Annotations)

		result, err = client.SearchRecords(ctx, phrsdk.SearchCriteria{Kind: phrsdk.KindData, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, result.TotalCount)
		assert.JSONEq(t, `{"pulse":62}`, string(result.Records[0].Resource.Data))
	})

	t.Run("Count", func(t *testing.T) {
		count, err := client.CountRecords(ctx, phrsdk.SearchCriteria{})
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		count, err = client.CountRecords(ctx, phrsdk.SearchCriteria{Kind: phrsdk.KindFhir4, ResourceType: "Patient"})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("UpdateAndDownload", func(t *testing.T) {
		created.Resource.Fhir.(*fhir4.DocumentReference).Description = "updated"
		updated, err := client.UpdateRecord(ctx, created.ID, created.Resource, []string{"referral"})
		require.NoError(t, err)
		assert.Equal(t, []string{"referral"}, updated.Annotations)

		downloaded, err := client.DownloadRecord(ctx, created.ID, phrsdk.DownloadFull)
		require.NoError(t, err)
		got := downloaded.Resource.Fhir.(*fhir4.DocumentReference)
		assert.Equal(t, "updated", got.Description)
		assert.Equal(t, letter, got.Content[0].Attachment.Data)
	})

	t.Run("Delete", func(t *testing.T) {
		missing := uuid.NewString()
		result := client.DeleteRecords(ctx, []string{created.ID, missing})
		assert.Equal(t, []string{created.ID}, result.Successes)
		assert.Equal(t, []string{missing}, result.FailedIDs())

		_, err := client.FetchRecord(ctx, created.ID)
		assert.Equal(t, phrsdk.ErrorNotFound, phrsdk.ErrorKindOf(err))
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := itc.newClient(t, "", "")
		defer func() { _ = other.Close(ctx) }()

		err := other.Login(ctx, account.UserID, "not-the-secret")
		assert.Equal(t, phrsdk.ErrorUnauthorized, phrsdk.ErrorKindOf(err))
	})
}

// testPersistentKeyStore checks that keys and the session written by one client are
// picked up by the next client opened on the same key store.
func testPersistentKeyStore(t *testing.T, itc *integrationTestContext) {
	ctx := context.Background()
	keystoreDir := filepath.Join(t.TempDir(), "keys")
	keyURI := testutil.LocalKeyURI(t)

	first := itc.newClient(t, keystoreDir, keyURI)
	_, err := first.Register(ctx)
	require.NoError(t, err)
	created, err := first.CreateRecord(ctx, phrsdk.NewDataResource([]byte("persisted")), []string{"kept"}, nil)
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	second := itc.newClient(t, keystoreDir, keyURI)
	defer func() { _ = second.Close(ctx) }()

	fetched, err := second.FetchRecord(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), fetched.Resource.Data)
	assert.Equal(t, []string{"kept"}, fetched.Annotations)

	require.NoError(t, second.Logout(ctx))
	_, err = second.FetchRecord(ctx, created.ID)
	assert.Equal(t, phrsdk.ErrorUnauthorized, phrsdk.ErrorKindOf(err))
}
