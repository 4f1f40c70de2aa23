package brserve

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

type testEnv struct {
	level      zapcore.Level
	otelExp    string
	health     string
	dev        bool
	noH2C      bool
	certFile   string
	keyFile    string
	secretID   string
	pageBucket string
	pagePrefix string
}

func (e testEnv) port() int           { return 0 }
func (e testEnv) serviceName() string { return "test" }
func (e testEnv) healthCheckPath() string {
	if e.health == "" {
		return "/health"
	}
	return e.health
}
func (e testEnv) logLevel() zapcore.Level { return e.level }
func (e testEnv) otelExporter() string {
	if e.otelExp == "" {
		return "none"
	}
	return e.otelExp
}
func (e testEnv) developmentMessages() bool           { return e.dev }
func (e testEnv) requestTimeout() time.Duration       { return 5 * time.Second }
func (e testEnv) h2c() bool                           { return !e.noH2C }
func (e testEnv) tlsFiles() (cert, key string)        { return e.certFile, e.keyFile }
func (e testEnv) tlsSecretID() string                 { return e.secretID }
func (e testEnv) secretCacheTTL() time.Duration       { return time.Minute }
func (e testEnv) errorPages() (bucket, prefix string) { return e.pageBucket, e.pagePrefix }
func (e testEnv) awsRegion() string                   { return "us-east-1" }

// mockSecretReader implements SecretReader for testing.
type mockSecretReader struct {
	secrets map[string]string
	err     error
}

func (m *mockSecretReader) GetSecretString(_ context.Context, secretID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	secret, ok := m.secrets[secretID]
	if !ok {
		return "", errors.Errorf("secret %q not found", secretID)
	}
	return secret, nil
}
