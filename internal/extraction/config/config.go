package config

import (
	"fmt"
	"os"
	"time"

	"rta-sync/internal/extraction/domain/model"
	"rta-sync/internal/shared/database"
	apperrors "rta-sync/internal/shared/errors"
	"rta-sync/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the sync process.
type Config struct {
	// Remote source
	LabsURL         string        `env:"LABS_URL"`
	MedsURL         string        `env:"MEDS_URL"`
	OrdersURL       string        `env:"ORDERS_URL"`
	LabsFrequency   int           `env:"LABS_EXTRACTION_FREQUENCY" envDefault:"15"` // minutes
	MedsFrequency   int           `env:"MEDS_EXTRACTION_FREQUENCY" envDefault:"15"`
	OrdersFrequency int           `env:"ORDERS_EXTRACTION_FREQUENCY" envDefault:"15"`
	SourceUsername  string        `env:"SOURCE_USERNAME"`
	SourcePassword  string        `env:"SOURCE_PASSWORD"`
	SourceTimeout   time.Duration `env:"SOURCE_HTTP_TIMEOUT" envDefault:"30s"`
	SourceMaxPages  int           `env:"SOURCE_MAX_PAGES" envDefault:"0"`
	DatasetsFile    string        `env:"DATASETS_FILE"`

	// Accepted for compatibility with older deployments; not read.
	LabsFilePath   string `env:"LABS_FILE_PATH"`
	MedsFilePath   string `env:"MEDS_FILE_PATH"`
	OrdersFilePath string `env:"ORDERS_FILE_PATH"`

	// Document store
	MongoURI             string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoUsername        string        `env:"MONGO_USERNAME"`
	MongoPassword        string        `env:"MONGO_PASSWORD"`
	MongoDatabase        string        `env:"MONGO_DATABASE" envDefault:"database"`
	MongoConnectTimeout  time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	MongoConnectAttempts uint          `env:"MONGO_CONNECT_ATTEMPTS" envDefault:"5"`

	// Scheduling
	PurgeAt       string        `env:"PURGE_AT" envDefault:"23:59"`
	SchedulerTick time.Duration `env:"SCHEDULER_TICK" envDefault:"1s"`
	RunOnStart    bool          `env:"RUN_ON_START" envDefault:"false"`

	Redis RedisConfig
	Admin AdminConfig
}

// AdminConfig controls the optional diagnostics listener
type AdminConfig struct {
	Enabled bool   `env:"ADMIN_ENABLED" envDefault:"false"`
	Addr    string `env:"ADMIN_ADDR" envDefault:":8080"`
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.NewValidationError("failed to load configuration from environment").WithCause(err)
	}
	if err := env.Parse(&cfg.Redis); err != nil {
		return nil, apperrors.NewValidationError("failed to load redis configuration from environment").WithCause(err)
	}
	if err := env.Parse(&cfg.Admin); err != nil {
		return nil, apperrors.NewValidationError("failed to load admin configuration from environment").WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem at once
func (c *Config) Validate() error {
	ve := apperrors.NewValidationErrors()
	if c.MongoURI == "" {
		ve.Add("MONGO_URI", "must be set", c.MongoURI)
	}
	if c.MongoDatabase == "" {
		ve.Add("MONGO_DATABASE", "must be set", c.MongoDatabase)
	}
	if _, _, err := model.ParseClock(c.PurgeAt); err != nil {
		ve.Add("PURGE_AT", "must be HH:MM", c.PurgeAt)
	}
	frequencies := []struct {
		key     string
		minutes int
	}{
		{"LABS_EXTRACTION_FREQUENCY", c.LabsFrequency},
		{"MEDS_EXTRACTION_FREQUENCY", c.MedsFrequency},
		{"ORDERS_EXTRACTION_FREQUENCY", c.OrdersFrequency},
	}
	for _, f := range frequencies {
		if f.minutes < 1 {
			ve.Add(f.key, "must be at least 1 minute", f.minutes)
		}
	}
	if c.SourceMaxPages < 0 {
		ve.Add("SOURCE_MAX_PAGES", "must not be negative", c.SourceMaxPages)
	}
	if c.SchedulerTick <= 0 {
		ve.Add("SCHEDULER_TICK", "must be positive", c.SchedulerTick.String())
	}
	if c.Admin.Enabled && c.Admin.Addr == "" {
		ve.Add("ADMIN_ADDR", "must be set when the admin listener is enabled", c.Admin.Addr)
	}
	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// Datasets returns the datasets to sync: the DATASETS_FILE contents when set,
// otherwise the built-in labs, meds and orders datasets whose URL is set.
func (c *Config) Datasets(log logger.Logger) ([]model.Dataset, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if c.DatasetsFile != "" {
		return LoadDatasetsFile(c.DatasetsFile)
	}

	builtin := []model.Dataset{
		{
			Name:      "labs",
			SourceURL: c.LabsURL,
			Partition: "labs_json",
			Index:     model.IndexSpec{DateField: "lab_date", IDField: "empi"},
			Frequency: time.Duration(c.LabsFrequency) * time.Minute,
		},
		{
			Name:      "meds",
			SourceURL: c.MedsURL,
			Partition: "meds_json",
			Index:     model.IndexSpec{DateField: "update_dt_tm", IDField: "empi"},
			Frequency: time.Duration(c.MedsFrequency) * time.Minute,
		},
		{
			Name:      "orders",
			SourceURL: c.OrdersURL,
			Partition: "orders_json",
			Index:     model.IndexSpec{DateField: "completed_dt_tm", IDField: "empi"},
			Frequency: time.Duration(c.OrdersFrequency) * time.Minute,
		},
	}

	out := make([]model.Dataset, 0, len(builtin))
	for _, ds := range builtin {
		if ds.SourceURL == "" {
			log.Warnf("No URL configured for %s, skipping it", ds.Name)
			continue
		}
		if err := ds.Validate(); err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	if len(out) == 0 {
		return nil, apperrors.NewValidationError("no dataset has a source URL; set LABS_URL, MEDS_URL, ORDERS_URL or DATASETS_FILE")
	}
	return out, nil
}

// Credentials returns the basic-auth credentials for the remote source
func (c *Config) Credentials() model.Credentials {
	return model.Credentials{Username: c.SourceUsername, Password: c.SourcePassword}
}

// MongoConfig returns the store connection settings
func (c *Config) MongoConfig() database.MongoConfig {
	return database.MongoConfig{
		URI:            c.MongoURI,
		Username:       c.MongoUsername,
		Password:       c.MongoPassword,
		ConnectTimeout: c.MongoConnectTimeout,
		MaxAttempts:    c.MongoConnectAttempts,
	}
}
