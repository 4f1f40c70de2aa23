package brservetest

import (
	"strconv"
	"testing"
)

// Env provides a chainable builder for setting [brserve.BaseEnvironment] env vars
// via t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets all [brserve.BaseEnvironment] env vars to sensible test defaults.
// Port is required because each test must use a unique port to avoid collisions.
//
// Defaults:
//   - BR_SERVICE_NAME: "test"
//   - BR_HEALTH_CHECK_PATH: "/health"
//   - BR_OTEL_EXPORTER: "none"
//   - BR_REQUEST_TIMEOUT: "5s"
//   - BR_DEVELOPMENT_MESSAGES: "false"
//   - BR_TLS_CERT_FILE, BR_TLS_KEY_FILE, BR_TLS_SECRET_ID: ""
//   - BR_SECRET_CACHE_TTL: "1m"
//   - BR_ERROR_PAGES_BUCKET, BR_ERROR_PAGES_PREFIX: ""
//   - AWS_REGION: "us-east-1"
//   - AWS_ACCESS_KEY_ID: "test"
//   - AWS_SECRET_ACCESS_KEY: "test"
//
// Use the returned [Env] to override individual values:
//
//	brservetest.SetBaseEnv(t, 18085).ServiceName("books").DevelopmentMessages(true)
func SetBaseEnv(t testing.TB, port int) *Env {
	t.Helper()
	t.Setenv("BR_PORT", strconv.Itoa(port))
	t.Setenv("BR_SERVICE_NAME", "test")
	t.Setenv("BR_HEALTH_CHECK_PATH", "/health")
	t.Setenv("BR_OTEL_EXPORTER", "none")
	t.Setenv("BR_REQUEST_TIMEOUT", "5s")
	t.Setenv("BR_DEVELOPMENT_MESSAGES", "false")
	t.Setenv("BR_TLS_CERT_FILE", "")
	t.Setenv("BR_TLS_KEY_FILE", "")
	t.Setenv("BR_TLS_SECRET_ID", "")
	t.Setenv("BR_SECRET_CACHE_TTL", "1m")
	t.Setenv("BR_ERROR_PAGES_BUCKET", "")
	t.Setenv("BR_ERROR_PAGES_PREFIX", "")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	return &Env{t: t}
}

// ServiceName overrides BR_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("BR_SERVICE_NAME", name)
	return e
}

// HealthCheckPath overrides BR_HEALTH_CHECK_PATH.
func (e *Env) HealthCheckPath(path string) *Env {
	e.t.Helper()
	e.t.Setenv("BR_HEALTH_CHECK_PATH", path)
	return e
}

// DevelopmentMessages overrides BR_DEVELOPMENT_MESSAGES.
func (e *Env) DevelopmentMessages(v bool) *Env {
	e.t.Helper()
	e.t.Setenv("BR_DEVELOPMENT_MESSAGES", strconv.FormatBool(v))
	return e
}

// RequestTimeout overrides BR_REQUEST_TIMEOUT.
func (e *Env) RequestTimeout(d string) *Env {
	e.t.Helper()
	e.t.Setenv("BR_REQUEST_TIMEOUT", d)
	return e
}

// TLSFiles overrides BR_TLS_CERT_FILE and BR_TLS_KEY_FILE.
func (e *Env) TLSFiles(cert, key string) *Env {
	e.t.Helper()
	e.t.Setenv("BR_TLS_CERT_FILE", cert)
	e.t.Setenv("BR_TLS_KEY_FILE", key)
	return e
}

// AWSRegion overrides AWS_REGION.
func (e *Env) AWSRegion(region string) *Env {
	e.t.Helper()
	e.t.Setenv("AWS_REGION", region)
	return e
}
