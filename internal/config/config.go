// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	customValidation "github.com/allisson/phrsdk/internal/validation"
)

// Config holds all application configuration. The SDK section configures the record
// client; the sandbox section configures the local PHR backend used for development.
type Config struct {
	// APIBaseURL is the PHR backend base URL the SDK talks to.
	APIBaseURL string
	// ClientID identifies this application as "<partnerId>#<platform>".
	ClientID string
	// SDKPlatform is the platform name sent in the version header.
	SDKPlatform string
	// SDKVersion is the SDK version sent in the version header.
	SDKVersion string
	// AccessToken is an optional static bearer token.
	AccessToken string
	// HTTPTimeout bounds a single backend round-trip.
	HTTPTimeout time.Duration
	// HTTPRateLimitRequestsPerSec paces outgoing requests; zero disables pacing.
	HTTPRateLimitRequestsPerSec float64
	// HTTPRateLimitBurst is the burst size for outgoing request pacing.
	HTTPRateLimitBurst int
	// DataKeyAlgorithm is the AEAD used for new data and attachment keys.
	DataKeyAlgorithm string
	// BatchConcurrency bounds parallel sub-operations of batch calls.
	BatchConcurrency int
	// KeyStorePath is the badger directory of the local key store; empty keeps keys in memory.
	KeyStorePath string
	// KMSKeyURI is the gocloud secrets URL used to seal the local key store.
	KMSKeyURI string

	// ServerHost is the host address the sandbox server will bind to.
	ServerHost string
	// ServerPort is the port number the sandbox server will listen on.
	ServerPort int

	// DBDriver is the sandbox storage driver ("memory", "postgres", "mysql").
	DBDriver string
	// DBConnectionString is the connection string for the database.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// BlobStore selects where sandbox documents are kept ("memory", "s3").
	BlobStore string
	// S3Bucket is the bucket holding encrypted documents.
	S3Bucket string
	// S3Region is the bucket region.
	S3Region string
	// S3Endpoint overrides the S3 endpoint (MinIO and friends).
	S3Endpoint string
	// S3AccessKey is the static access key for the S3 endpoint.
	S3AccessKey string
	// S3SecretKey is the static secret key for the S3 endpoint.
	S3SecretKey string
	// S3UsePathStyle addresses objects as endpoint/bucket/key.
	S3UsePathStyle bool
	// DocumentMaxSize caps a single document upload in bytes.
	DocumentMaxSize int64

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// AuthJWTSecret signs sandbox bearer tokens.
	AuthJWTSecret string
	// AuthTokenExpiration is the duration after which a sandbox token expires.
	AuthTokenExpiration time.Duration

	// RateLimitEnabled indicates whether rate limiting for authenticated endpoints is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second for authenticated endpoints.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for authenticated endpoints rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// SDK
		APIBaseURL:                  env.GetString("API_BASE_URL", "http://localhost:8080"),
		ClientID:                    env.GetString("CLIENT_ID", "sandbox#go"),
		SDKPlatform:                 env.GetString("SDK_PLATFORM", "Go"),
		SDKVersion:                  env.GetString("SDK_VERSION", "1.0.0"),
		AccessToken:                 env.GetString("ACCESS_TOKEN", ""),
		HTTPTimeout:                 env.GetDuration("HTTP_TIMEOUT_SECONDS", 30, time.Second),
		HTTPRateLimitRequestsPerSec: env.GetFloat64("HTTP_RATE_LIMIT_REQUESTS_PER_SEC", 0),
		HTTPRateLimitBurst:          env.GetInt("HTTP_RATE_LIMIT_BURST", 10),
		DataKeyAlgorithm:            env.GetString("DATA_KEY_ALGORITHM", "aes-gcm"),
		BatchConcurrency:            env.GetInt("BATCH_CONCURRENCY", 4),
		KeyStorePath:                env.GetString("KEYSTORE_PATH", ""),
		KMSKeyURI:                   env.GetString("KMS_KEY_URI", ""),

		// Sandbox server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Database configuration
		DBDriver:             env.GetString("DB_DRIVER", "memory"),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", ""),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Document storage
		BlobStore:       env.GetString("BLOB_STORE", "memory"),
		S3Bucket:        env.GetString("S3_BUCKET", ""),
		S3Region:        env.GetString("S3_REGION", "us-east-1"),
		S3Endpoint:      env.GetString("S3_ENDPOINT", ""),
		S3AccessKey:     env.GetString("S3_ACCESS_KEY", ""),
		S3SecretKey:     env.GetString("S3_SECRET_KEY", ""),
		S3UsePathStyle:  env.GetBool("S3_USE_PATH_STYLE", true),
		DocumentMaxSize: int64(env.GetInt("DOCUMENT_MAX_SIZE_BYTES", 20<<20)),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Auth
		AuthJWTSecret:       env.GetString("AUTH_JWT_SECRET", ""),
		AuthTokenExpiration: env.GetDuration("AUTH_TOKEN_EXPIRATION_SECONDS", 14400, time.Second),

		// Rate Limiting (authenticated endpoints)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "phrsdk"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// PartnerID returns the client id prefix before the "#" separator.
func (c *Config) PartnerID() string {
	partnerID, _, _ := strings.Cut(c.ClientID, "#")
	return partnerID
}

// ValidateSDK checks the settings the record client cannot work without.
func (c *Config) ValidateSDK() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIBaseURL, validation.Required, customValidation.HTTPURL),
		validation.Field(&c.ClientID, validation.Required, customValidation.ClientID),
		validation.Field(&c.SDKPlatform, validation.Required),
		validation.Field(&c.SDKVersion, validation.Required),
		validation.Field(&c.DataKeyAlgorithm, validation.In("aes-gcm", "chacha20-poly1305")),
		validation.Field(&c.BatchConcurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.HTTPRateLimitRequestsPerSec, validation.Min(0.0)),
	)
}

// ValidateSandbox checks the settings the sandbox server cannot start without.
func (c *Config) ValidateSandbox() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AuthJWTSecret, validation.Required, validation.Length(32, 0)),
		validation.Field(&c.AuthTokenExpiration, validation.Required),
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DBDriver, validation.In("memory", "postgres", "mysql")),
		validation.Field(&c.DBConnectionString, validation.When(c.DBDriver != "memory", validation.Required)),
		validation.Field(&c.BlobStore, validation.In("memory", "s3")),
		validation.Field(&c.S3Bucket, validation.When(c.BlobStore == "s3", validation.Required)),
		validation.Field(&c.DocumentMaxSize, validation.Required, validation.Min(int64(1))),
	)
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
