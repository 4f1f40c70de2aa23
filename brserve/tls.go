package brserve

import (
	"context"
	"crypto/tls"
	"os"

	"github.com/cockroachdb/errors"
)

// JSON paths of the PEM blocks inside a BR_TLS_SECRET_ID secret.
const (
	secretCertificatePath = "certificate"
	secretPrivateKeyPath  = "privateKey"
)

// LoadTLSConfig returns the TLS configuration for the listener, or nil when the server should
// serve plain HTTP. Certificate material comes from BR_TLS_CERT_FILE/BR_TLS_KEY_FILE or from the
// secret named by BR_TLS_SECRET_ID.
func LoadTLSConfig(ctx context.Context, env Environment, secrets SecretReader) (*tls.Config, error) {
	if err := validateTLS(env); err != nil {
		return nil, err
	}

	var (
		certPEM, keyPEM []byte
		err             error
	)

	switch certFile, keyFile := env.tlsFiles(); {
	case certFile != "":
		certPEM, keyPEM, err = readPEMFiles(certFile, keyFile)
	case env.tlsSecretID() != "":
		certPEM, keyPEM, err = readPEMSecret(ctx, secrets, env.tlsSecretID())
	default:
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse certificate and key")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   []string{"h2", "http/1.1"},
	}, nil
}

func readPEMFiles(certFile, keyFile string) (certPEM, keyPEM []byte, err error) {
	certPEM, err = os.ReadFile(certFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read certificate file")
	}

	keyPEM, err = os.ReadFile(keyFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read key file")
	}

	return certPEM, keyPEM, nil
}

func readPEMSecret(ctx context.Context, secrets SecretReader, secretID string) (certPEM, keyPEM []byte, err error) {
	vals, err := readSecretFields(ctx, secrets, secretID, secretCertificatePath, secretPrivateKeyPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read BR_TLS_SECRET_ID")
	}

	return []byte(vals[0]), []byte(vals[1]), nil
}
