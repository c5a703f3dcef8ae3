package phrsdk

import (
	"log/slog"
	"time"

	"github.com/allisson/phrsdk/internal/config"
)

// settings collects what the options change before the client is wired.
type settings struct {
	config *config.Config
	logger *slog.Logger
}

// Option configures a Client. Options are applied on top of the environment
// configuration read by config.Load.
type Option func(*settings)

// WithBaseURL sets the PHR backend URL.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) { s.config.APIBaseURL = baseURL }
}

// WithClientID sets the "<partnerId>#<platform>" client id.
func WithClientID(clientID string) Option {
	return func(s *settings) { s.config.ClientID = clientID }
}

// WithPlatform sets the platform and version sent in the version header.
func WithPlatform(platform, version string) Option {
	return func(s *settings) {
		s.config.SDKPlatform = platform
		s.config.SDKVersion = version
	}
}

// WithAccessToken authenticates every request with a fixed token instead of the stored
// session.
func WithAccessToken(token string) Option {
	return func(s *settings) { s.config.AccessToken = token }
}

// WithKeyStore persists keys in the badger directory at path, sealed with the gocloud
// secrets keeper at kmsKeyURI (for example "base64key://..." or "awskms://...").
func WithKeyStore(path, kmsKeyURI string) Option {
	return func(s *settings) {
		s.config.KeyStorePath = path
		s.config.KMSKeyURI = kmsKeyURI
	}
}

// WithHTTPTimeout bounds a single backend round-trip.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(s *settings) { s.config.HTTPTimeout = timeout }
}

// WithRateLimit paces outgoing requests. A zero rate disables pacing.
func WithRateLimit(requestsPerSec float64, burst int) Option {
	return func(s *settings) {
		s.config.HTTPRateLimitRequestsPerSec = requestsPerSec
		s.config.HTTPRateLimitBurst = burst
	}
}

// WithDataKeyAlgorithm selects "aes-gcm" or "chacha20-poly1305" for new data keys.
func WithDataKeyAlgorithm(algorithm string) Option {
	return func(s *settings) { s.config.DataKeyAlgorithm = algorithm }
}

// WithBatchConcurrency bounds the parallel sub-operations of batch calls.
func WithBatchConcurrency(n int) Option {
	return func(s *settings) { s.config.BatchConcurrency = n }
}

// WithMetrics turns the OpenTelemetry instruments of the client on or off.
func WithMetrics(enabled bool) Option {
	return func(s *settings) { s.config.MetricsEnabled = enabled }
}

// WithLogger replaces the JSON logger built from LOG_LEVEL.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}
