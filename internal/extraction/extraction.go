// Package extraction assembles the sync pipeline: loaders and purgers bound
// to scheduled jobs, the runner that executes them, and the admin surface.
package extraction

import (
	"context"
	"fmt"

	adminhttp "rta-sync/internal/extraction/adapter/http"
	"rta-sync/internal/extraction/adapter/persistence"
	mongodbpersistence "rta-sync/internal/extraction/adapter/persistence/mongodb"
	"rta-sync/internal/extraction/adapter/remote"
	"rta-sync/internal/extraction/config"
	"rta-sync/internal/extraction/domain/model"
	"rta-sync/internal/extraction/domain/repository"
	"rta-sync/internal/extraction/metrics"
	"rta-sync/internal/extraction/scheduler"
	"rta-sync/internal/extraction/usecase"
	"rta-sync/internal/shared/eventbus"
	"rta-sync/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// ExtractionModule holds every wired component of the pipeline.
type ExtractionModule struct {
	Config      *config.Config
	Logger      logger.Logger
	Datasets    []model.Dataset
	Descriptors []model.JobDescriptor

	Store     repository.RecordStore
	Source    repository.SourceClient
	Journal   repository.RunJournal
	Loader    *usecase.Loader
	Purger    *usecase.Purger
	Viewer    *usecase.SnapshotViewer
	EventBus  *eventbus.EventBus
	Metrics   *metrics.Recorder
	Runner    *scheduler.Runner
	Scheduler *scheduler.Scheduler
	Admin     *adminhttp.AdminHTTPHandler
}

// NewExtractionModule wires the pipeline over db. redisClient may be nil, in
// which case runs are not journaled. Job descriptors are registered but
// nothing runs until Start.
func NewExtractionModule(cfg *config.Config, log logger.Logger, db *mongo.Database, redisClient *redis.Client) (*ExtractionModule, error) {
	if log == nil {
		log = logger.NewLogger()
	}
	log.Info("Initializing extraction module...")

	datasets, err := cfg.Datasets(log)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve datasets: %w", err)
	}

	bus := eventbus.NewEventBus(log)
	recorder := metrics.NewRecorder(nil)
	recorder.Subscribe(bus)

	var journal repository.RunJournal
	if redisClient != nil {
		rj := persistence.NewRedisRunJournal(redisClient, cfg.Redis.JournalStream, cfg.Redis.JournalMaxLen, log)
		rj.Subscribe(bus)
		journal = rj
		log.Info("Run journal enabled.")
	}

	store := mongodbpersistence.NewRecordStore(db, log)
	source := remote.NewClient(cfg.SourceTimeout, log)
	loader := usecase.NewLoader(source, store, log, cfg.SourceMaxPages)
	purger := usecase.NewPurger(store, log, nil)
	viewer := usecase.NewSnapshotViewer(store, log)

	runner := scheduler.NewRunner(log, bus)
	sched := scheduler.New(runner, log, scheduler.WithTickInterval(cfg.SchedulerTick))

	descriptors := usecase.BuildDescriptors(datasets, cfg.PurgeAt)
	creds := cfg.Credentials()
	for _, desc := range descriptors {
		job, err := usecase.Bind(desc, loader, purger, creds)
		if err != nil {
			return nil, err
		}
		var opts []scheduler.RegisterOption
		if cfg.RunOnStart && desc.Kind == model.JobKindLoad {
			opts = append(opts, scheduler.Immediately())
		}
		if err := sched.Register(job, opts...); err != nil {
			return nil, err
		}
	}

	admin := adminhttp.NewAdminHTTPHandler(store, sched, viewer, journal, recorder.Handler(), log)

	log.Infof("Extraction module ready with %d datasets and %d jobs.", len(datasets), len(descriptors))
	return &ExtractionModule{
		Config:      cfg,
		Logger:      log,
		Datasets:    datasets,
		Descriptors: descriptors,
		Store:       store,
		Source:      source,
		Journal:     journal,
		Loader:      loader,
		Purger:      purger,
		Viewer:      viewer,
		EventBus:    bus,
		Metrics:     recorder,
		Runner:      runner,
		Scheduler:   sched,
		Admin:       admin,
	}, nil
}

// RegisterRoutes mounts the admin endpoints
func (m *ExtractionModule) RegisterRoutes(router fiber.Router) {
	m.Admin.SetupRoutes(router)
}

// Start runs the scheduler until ctx is cancelled, then waits for every
// dispatched job to return.
func (m *ExtractionModule) Start(ctx context.Context) error {
	err := m.Scheduler.Run(ctx)
	m.Logger.Info("Waiting for running jobs to finish...")
	m.Runner.Wait()
	return err
}
