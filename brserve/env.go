package brserve

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	port() int
	serviceName() string
	healthCheckPath() string
	logLevel() zapcore.Level
	otelExporter() string
	developmentMessages() bool
	requestTimeout() time.Duration
	h2c() bool
	tlsFiles() (cert, key string)
	tlsSecretID() string
	secretCacheTTL() time.Duration
	errorPages() (bucket, prefix string)
	awsRegion() string
}

// BaseEnvironment contains the environment variables every server reads.
// Embed this in your custom environment struct.
type BaseEnvironment struct {
	Port                int           `env:"BR_PORT" envDefault:"8080"`
	ServiceName         string        `env:"BR_SERVICE_NAME,required,notEmpty"`
	HealthCheckPath     string        `env:"BR_HEALTH_CHECK_PATH" envDefault:"/health"`
	LogLevel            zapcore.Level `env:"BR_LOG_LEVEL" envDefault:"info"`
	OtelExporter        string        `env:"BR_OTEL_EXPORTER" envDefault:"stdout"`
	DevelopmentMessages bool          `env:"BR_DEVELOPMENT_MESSAGES" envDefault:"false"`
	RequestTimeout      time.Duration `env:"BR_REQUEST_TIMEOUT" envDefault:"30s"`
	H2C                 bool          `env:"BR_H2C" envDefault:"true"`
	// TLSCertFile and TLSKeyFile must be set together. They are mutually exclusive with
	// TLSSecretID.
	TLSCertFile string `env:"BR_TLS_CERT_FILE"`
	TLSKeyFile  string `env:"BR_TLS_KEY_FILE"`
	// TLSSecretID names a Secrets Manager secret holding a JSON document with "certificate" and
	// "privateKey" PEM strings.
	TLSSecretID string `env:"BR_TLS_SECRET_ID"`
	// SecretCacheTTL bounds how long a secret read through the runtime or for TLS is reused.
	SecretCacheTTL time.Duration `env:"BR_SECRET_CACHE_TTL" envDefault:"1h"`
	// ErrorPagesBucket enables loading 404.html and 500.html from S3.
	ErrorPagesBucket string `env:"BR_ERROR_PAGES_BUCKET"`
	ErrorPagesPrefix string `env:"BR_ERROR_PAGES_PREFIX"`
	AWSRegion        string `env:"AWS_REGION"`
}

func (e BaseEnvironment) port() int {
	return e.Port
}

func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}

func (e BaseEnvironment) healthCheckPath() string {
	return e.HealthCheckPath
}

func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

func (e BaseEnvironment) otelExporter() string {
	return e.OtelExporter
}

func (e BaseEnvironment) developmentMessages() bool {
	return e.DevelopmentMessages
}

func (e BaseEnvironment) requestTimeout() time.Duration {
	return e.RequestTimeout
}

func (e BaseEnvironment) h2c() bool {
	return e.H2C
}

func (e BaseEnvironment) tlsFiles() (cert, key string) {
	return e.TLSCertFile, e.TLSKeyFile
}

func (e BaseEnvironment) tlsSecretID() string {
	return e.TLSSecretID
}

func (e BaseEnvironment) secretCacheTTL() time.Duration {
	return e.SecretCacheTTL
}

func (e BaseEnvironment) errorPages() (bucket, prefix string) {
	return e.ErrorPagesBucket, e.ErrorPagesPrefix
}

func (e BaseEnvironment) awsRegion() string {
	return e.AWSRegion
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}

		if err := validateTLS(e); err != nil {
			return e, err
		}

		return e, nil
	}
}

// validateTLS checks that certificate and key are given both or neither, and that files and a
// secret are not combined.
func validateTLS(e Environment) error {
	cert, key := e.tlsFiles()
	if (cert == "") != (key == "") {
		return errors.New("brserve: BR_TLS_CERT_FILE and BR_TLS_KEY_FILE must be set together")
	}

	if cert != "" && e.tlsSecretID() != "" {
		return errors.New("brserve: BR_TLS_SECRET_ID cannot be combined with BR_TLS_CERT_FILE")
	}

	return nil
}
