package brserve

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-secretsmanager-caching-go/v2/secretcache"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// SecretReader reads the raw string value of a secret. The listener's TLS material and
// [Runtime.Secret] both read through it.
type SecretReader interface {
	GetSecretString(ctx context.Context, secretID string) (string, error)
}

// AWSSecretReader reads from AWS Secrets Manager through an in-memory cache. Items older than
// BR_SECRET_CACHE_TTL are refreshed on the next read so rotated values show up without a
// redeploy.
type AWSSecretReader struct {
	cache *secretcache.Cache
}

// NewAWSSecretReader inits a reader for cfg. A zero ttl keeps the cache's default of one hour.
func NewAWSSecretReader(cfg aws.Config, ttl time.Duration) (*AWSSecretReader, error) {
	cache, err := secretcache.New(func(c *secretcache.Cache) {
		c.Client = secretsmanager.NewFromConfig(cfg)
		if ttl > 0 {
			c.CacheItemTTL = ttl.Nanoseconds()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "init secret cache")
	}

	return &AWSSecretReader{cache: cache}, nil
}

// GetSecretString implements [SecretReader].
func (r *AWSSecretReader) GetSecretString(ctx context.Context, secretID string) (string, error) {
	secret, err := r.cache.GetSecretStringWithContext(ctx, secretID)
	if err != nil {
		return "", errors.Wrapf(err, "get secret %q", secretID)
	}

	return secret, nil
}

// readSecretFields reads a secret once and returns the value at each gjson path. Without paths
// the raw secret is the only value. Every path must exist.
func readSecretFields(ctx context.Context, reader SecretReader, secretID string, paths ...string) ([]string, error) {
	if reader == nil {
		return nil, errors.Newf("brserve: secret %q requested but no secret reader is configured", secretID)
	}

	secret, err := reader.GetSecretString(ctx, secretID)
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		return []string{secret}, nil
	}

	if !gjson.Valid(secret) {
		return nil, errors.Newf("secret %q is not a JSON document", secretID)
	}

	vals := make([]string, len(paths))
	for i, res := range gjson.GetMany(secret, paths...) {
		if !res.Exists() {
			return nil, errors.Newf("secret path %q not found in secret %q", paths[i], secretID)
		}

		vals[i] = res.String()
	}

	return vals, nil
}
