package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type requestInstruments struct {
	requests  metric.Int64Counter
	durations metric.Float64Histogram
}

func newRequestInstruments(meter metric.Meter, prefix, description string) (*requestInstruments, error) {
	requests, err := meter.Int64Counter(
		prefix+"_requests_total",
		metric.WithDescription("Total number of "+description),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durations, err := meter.Float64Histogram(
		prefix+"_request_duration_seconds",
		metric.WithDescription("Duration of "+description+" in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &requestInstruments{requests: requests, durations: durations}, nil
}

// HTTPMetricsMiddleware records request counts and latencies of the sandbox server,
// labelled by method, route pattern and status code. Returns a pass-through middleware
// if the instruments cannot be created.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	instruments, err := newRequestInstruments(
		meterProvider.Meter(namespace),
		fmt.Sprintf("%s_http", namespace),
		"HTTP requests",
	)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", routeLabel(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		instruments.requests.Add(c.Request.Context(), 1, attrs)
		instruments.durations.Record(c.Request.Context(), time.Since(start).Seconds(), attrs)
	}
}

// routeLabel keeps unmatched paths out of the label set.
func routeLabel(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

// transport instruments outgoing backend calls.
type transport struct {
	next        http.RoundTripper
	instruments *requestInstruments
}

// NewTransport wraps next so every backend round-trip is counted and timed, labelled by
// method and status code ("error" when no response arrived). A nil next means
// http.DefaultTransport.
func NewTransport(meterProvider metric.MeterProvider, namespace string, next http.RoundTripper) (http.RoundTripper, error) {
	if next == nil {
		next = http.DefaultTransport
	}

	instruments, err := newRequestInstruments(
		meterProvider.Meter(namespace),
		fmt.Sprintf("%s_client", namespace),
		"backend requests",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client instruments: %w", err)
	}

	return &transport{next: next, instruments: instruments}, nil
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	attrs := metric.WithAttributes(
		attribute.String("method", req.Method),
		attribute.String("status_code", status),
	)
	t.instruments.requests.Add(req.Context(), 1, attrs)
	t.instruments.durations.Record(req.Context(), time.Since(start).Seconds(), attrs)

	return resp, err
}
