package accounting

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/netric-solutions/quote-bridge/internal/metrics"
	pkgsecrets "github.com/netric-solutions/quote-bridge/pkg/secrets"
)

// StaticResolver serves credentials straight from configuration. Used
// when no secret name is configured (dev setups).
type StaticResolver struct {
	creds Credentials
}

func NewStaticResolver(username, password string) *StaticResolver {
	return &StaticResolver{creds: Credentials{Username: username, Password: password}}
}

func (r *StaticResolver) Resolve(_ context.Context) (*Credentials, error) {
	return &r.creds, nil
}

// AWSResolver resolves gateway credentials from AWS Secrets Manager
// with an in-memory TTL cache in front.
//
// Secret JSON format: {"username": "ADMIN", "password": "..."}
type AWSResolver struct {
	logger     *zap.Logger
	secretName string
	provider   pkgsecrets.Provider
	cache      *pkgsecrets.Cache[Credentials]
}

// NewAWSResolver constructs a credential resolver using AWS Secrets Manager and local cache.
func NewAWSResolver(
	logger *zap.Logger,
	secretName string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[Credentials],
) *AWSResolver {
	return &AWSResolver{
		logger:     logger,
		secretName: secretName,
		provider:   provider,
		cache:      cache,
	}
}

// Resolve fetches or caches the gateway credentials.
func (r *AWSResolver) Resolve(ctx context.Context) (*Credentials, error) {
	if cached, ok := r.cache.Get(r.secretName); ok {
		metrics.IncCacheAccess("credentials", "hit")
		return &cached, nil
	}
	metrics.IncCacheAccess("credentials", "miss")

	raw, err := r.provider.GetSecret(ctx, r.secretName)
	if err != nil {
		return nil, fmt.Errorf("fetch gateway secret [%s]: %w", r.secretName, err)
	}

	creds, err := parseCredentials(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway secret [%s]: %w", r.secretName, err)
	}

	r.cache.Put(r.secretName, creds)
	r.logger.Debug("accounting.credentials_resolved",
		zap.String("secret", r.secretName),
		zap.String("username", creds.Username))
	return &creds, nil
}

// parseCredentials extracts Credentials from the raw AWS secret map.
func parseCredentials(m map[string]string) (Credentials, error) {
	creds := Credentials{
		Username: m["username"],
		Password: m["password"],
	}
	if creds.Username == "" {
		return Credentials{}, fmt.Errorf("missing required field 'username'")
	}
	if creds.Password == "" {
		return Credentials{}, fmt.Errorf("missing required field 'password'")
	}
	return creds, nil
}
