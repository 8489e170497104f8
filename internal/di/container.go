package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rta-sync/internal/extraction"
	"rta-sync/internal/extraction/config"
	"rta-sync/internal/shared/database"
	"rta-sync/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container owns the process-wide connections and the extraction module.
type Container struct {
	mu sync.RWMutex

	Config           *config.Config
	Logger           logger.Logger
	MongoClient      *mongo.Client
	MongoDB          *mongo.Database
	RedisClient      *redis.Client
	ExtractionModule *extraction.ExtractionModule
}

// NewContainer creates an empty container
func NewContainer(cfg *config.Config, log logger.Logger) *Container {
	if log == nil {
		log = logger.NewLogger()
	}
	return &Container{Config: cfg, Logger: log}
}

// ConnectStore opens the MongoDB connection, retrying with backoff.
func (c *Container) ConnectStore(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	client, err := database.Connect(ctx, c.Config.MongoConfig(), c.Logger)
	if err != nil {
		return err
	}
	c.MongoClient = client
	c.MongoDB = client.Database(c.Config.MongoDatabase)
	return nil
}

// ConnectRedis opens the journal connection when one is configured. A failed
// ping disables the journal instead of failing startup.
func (c *Container) ConnectRedis(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.Config.Redis.Enabled() {
		return
	}
	client := config.NewRedisClient(c.Config.Redis)
	if err := client.Ping(ctx).Err(); err != nil {
		c.Logger.Warnf("Redis at %s unreachable, run journal disabled: %v", c.Config.Redis.Addr, err)
		_ = client.Close()
		return
	}
	c.RedisClient = client
}

// InitializeExtraction builds the extraction module over the open connections
func (c *Container) InitializeExtraction() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.MongoDB == nil {
		return fmt.Errorf("MongoDB must be connected before the extraction module")
	}
	module, err := extraction.NewExtractionModule(c.Config, c.Logger, c.MongoDB, c.RedisClient)
	if err != nil {
		return fmt.Errorf("failed to create extraction module: %w", err)
	}
	c.ExtractionModule = module
	return nil
}

// GetExtractionModule returns the module, or nil before InitializeExtraction
func (c *Container) GetExtractionModule() *extraction.ExtractionModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ExtractionModule
}

// HealthCheck pings the store
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoClient == nil {
		return fmt.Errorf("MongoDB is not connected")
	}
	if err := c.MongoClient.Ping(ctx, nil); err != nil {
		return fmt.Errorf("MongoDB health check failed: %w", err)
	}
	return nil
}

// Close releases connections in reverse order of opening
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
		c.RedisClient = nil
	}
	if c.MongoClient != nil {
		start := time.Now()
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb: %w", err))
		} else {
			c.Logger.Infof("MongoDB disconnected in %.2f seconds.", time.Since(start).Seconds())
		}
		c.MongoClient = nil
		c.MongoDB = nil
	}
	c.ExtractionModule = nil

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}
