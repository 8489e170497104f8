package database

import (
	"context"
	"fmt"
	"time"

	apperrors "rta-sync/internal/shared/errors"
	"rta-sync/internal/shared/logger"

	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig holds what is needed to open the shared store connection
type MongoConfig struct {
	URI            string
	Username       string
	Password       string
	ConnectTimeout time.Duration
	MaxAttempts    uint
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Connect opens a MongoDB client and verifies it with a ping. Ping failures are
// retried with exponential backoff up to MaxAttempts; a malformed URI fails at
// once. The returned error is always a CONNECTION_FAILURE.
func Connect(ctx context.Context, cfg MongoConfig, log logger.Logger) (*mongo.Client, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.WithComponent("database")

	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	policy := backoff.NewExponentialBackOff()
	if cfg.InitialBackoff > 0 {
		policy.InitialInterval = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		policy.MaxInterval = cfg.MaxBackoff
	}

	start := time.Now()
	attempt := 0
	client, err := backoff.Retry(ctx, func() (*mongo.Client, error) {
		attempt++
		return dial(ctx, cfg)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(cfg.MaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.WithFields(map[string]interface{}{
				"attempt":  attempt,
				"retry_in": next.String(),
			}).Warnf("MongoDB connection attempt failed: %v", err)
		}),
	)
	elapsed := time.Since(start)
	if err != nil {
		log.WithFields(map[string]interface{}{
			"attempts": attempt,
			"elapsed":  elapsed.Round(10 * time.Millisecond).String(),
		}).Error("MongoDB Connection Unsuccessful.")
		return nil, apperrors.NewConnectionError(fmt.Sprintf("mongodb unreachable after %d attempt(s)", attempt)).
			WithCause(err).
			WithComponent("database")
	}

	log.WithFields(map[string]interface{}{
		"attempts": attempt,
		"elapsed":  elapsed.Round(10 * time.Millisecond).String(),
	}).Info("MongoDB Connection Successful.")
	return client, nil
}

func dial(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		// Option and URI errors do not get better with time.
		return nil, backoff.Permanent(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnreachable, err)
	}
	return client, nil
}
