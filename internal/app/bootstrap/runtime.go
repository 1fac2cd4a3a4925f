package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/chamber-scheduler/internal/config"
	"github.com/wolfman30/chamber-scheduler/internal/persistence"
	"github.com/wolfman30/chamber-scheduler/pkg/logging"
)

// AWSConfigLoader resolves the shared AWS SDK config on first use.
type AWSConfigLoader func(ctx context.Context) (aws.Config, error)

// Persistence backend names accepted in PERSISTENCE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildBackend selects the document store named by PERSISTENCE_BACKEND. The
// returned cleanup releases any connection the backend holds.
func BuildBackend(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, loadAWS AWSConfigLoader) (persistence.Backend, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() {}

	switch cfg.PersistenceBackend {
	case BackendMemory:
		logger.Warn("using in-memory persistence; data is lost on restart")
		return persistence.NewMemoryBackend(), noop, nil

	case "", BackendFile:
		logger.Info("using file persistence", "dir", cfg.DataDir)
		return persistence.NewFileBackend(cfg.DataDir), noop, nil

	case BackendRedis:
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			return nil, nil, fmt.Errorf("bootstrap: redis unavailable at %q", cfg.RedisAddr)
		}
		logger.Info("using redis persistence", "addr", cfg.RedisAddr, "prefix", cfg.RedisKeyPrefix)
		return persistence.NewRedisBackend(client, cfg.RedisKeyPrefix), func() { _ = client.Close() }, nil

	case BackendPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, nil, fmt.Errorf("bootstrap: DATABASE_URL is required for postgres persistence")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		logger.Info("using postgres persistence")
		return persistence.NewPostgresBackend(pool), pool.Close, nil

	case BackendS3:
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, nil, fmt.Errorf("bootstrap: S3_BUCKET is required for s3 persistence")
		}
		if loadAWS == nil {
			return nil, nil, fmt.Errorf("bootstrap: aws config loader is required for s3 persistence")
		}
		awsCfg, err := loadAWS(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			// LocalStack only serves path-style URLs.
			o.UsePathStyle = cfg.AWSEndpointOverride != ""
		})
		logger.Info("using s3 persistence", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		return persistence.NewS3Backend(client, cfg.S3Bucket, cfg.S3Prefix), noop, nil

	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown persistence backend %q", cfg.PersistenceBackend)
	}
}
