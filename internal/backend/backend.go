// Package backend opens the household store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"rsvp-households/internal/config"
	"rsvp-households/internal/domain"
	householdrepo "rsvp-households/internal/repository/household"
	householdsvc "rsvp-households/internal/service/household"
)

// Open builds the configured Store. The returned close func releases the
// underlying client and is never nil.
func Open(ctx context.Context, cfg config.Config, logger zerolog.Logger) (householdrepo.Store, func(), error) {
	noop := func() {}
	switch cfg.Store.Backend {
	case "memory":
		return householdrepo.NewMemory(cfg.Store.BatchSize), noop, nil
	case "postgres":
		pool, err := ConnectPostgres(ctx, cfg.DB.DSN, cfg.DB.MaxConns)
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		return householdrepo.NewPostgres(pool, logger, cfg.Store.BatchSize), pool.Close, nil
	case "dynamodb":
		client, err := NewDynamoClient(ctx, cfg.Store)
		if err != nil {
			return nil, noop, fmt.Errorf("init dynamodb: %w", err)
		}
		return householdrepo.NewDynamo(client, cfg.Store.Table, cfg.Store.ConsistentRead, logger), noop, nil
	case "redis":
		rdb, err := ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		store := householdrepo.NewRedis(rdb, cfg.Redis.Prefix, cfg.Store.BatchSize, logger)
		return store, func() { _ = rdb.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// ServiceOptions maps configuration onto household service options.
func ServiceOptions(cfg config.Config, logger zerolog.Logger) []householdsvc.Option {
	policy := householdsvc.DefaultRetryPolicy
	policy.MaxAttempts = cfg.Retry.MaxAttempts
	if cfg.Retry.InitialDelay > 0 {
		policy.InitialDelay = cfg.Retry.InitialDelay
	}
	if cfg.Retry.MaxDelay > 0 {
		policy.MaxDelay = cfg.Retry.MaxDelay
	}
	policy.MaxElapsed = cfg.Retry.MaxElapsed

	return []householdsvc.Option{
		householdsvc.WithMenu(domain.ParseMenu(cfg.Menu.Dishes)),
		householdsvc.WithRetryPolicy(policy),
		householdsvc.WithPruneStaleMembers(cfg.Household.PruneStaleMembers),
		householdsvc.WithLogger(logger),
	}
}

// OpenService opens the configured store and builds a household service on
// top of it. The store is returned too so callers can probe readiness.
func OpenService(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*householdsvc.Service, householdrepo.Store, func(), error) {
	store, closeFn, err := Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, closeFn, err
	}
	return householdsvc.New(store, ServiceOptions(cfg, logger)...), store, closeFn, nil
}

// ConnectPostgres opens a pgx pool and verifies connectivity with a ping.
// maxConns <= 0 keeps the pgx default.
func ConnectPostgres(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// NewDynamoClient builds a DynamoDB client from the store options. A custom
// endpoint (e.g. DynamoDB Local) and static credentials are used when set;
// otherwise the default AWS credential chain applies.
func NewDynamoClient(ctx context.Context, sc config.StoreConfig) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(sc.Region)}
	if sc.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(sc.AccessKeyID, sc.SecretAccessKey, sc.SessionToken),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
		}
	}), nil
}

// ConnectRedis opens a Redis client and pings it.
func ConnectRedis(ctx context.Context, rc config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        rc.Addr,
		Password:    rc.Password,
		DB:          rc.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
