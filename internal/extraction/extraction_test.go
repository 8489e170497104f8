package extraction

import (
	"testing"
	"time"

	"rta-sync/internal/extraction/config"
	"rta-sync/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func testConfig() *config.Config {
	return &config.Config{
		LabsURL:         "https://rta.example.com/ords/labs",
		MedsURL:         "https://rta.example.com/ords/meds",
		LabsFrequency:   15,
		MedsFrequency:   30,
		OrdersFrequency: 15,
		SourceTimeout:   time.Second,
		PurgeAt:         "23:59",
		SchedulerTick:   time.Second,
		MongoDatabase:   "database",
	}
}

func TestNewExtractionModule(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("registers one load and one purge per dataset", func(mt *mtest.T) {
		m, err := NewExtractionModule(testConfig(), logger.NewNopLogger(), mt.DB, nil)
		require.NoError(t, err)

		assert.Len(t, m.Datasets, 2)
		assert.Nil(t, m.Journal)
		status := m.Scheduler.Status()
		require.Len(t, status, 4)
		names := []string{status[0].Name, status[1].Name, status[2].Name, status[3].Name}
		assert.Equal(t, []string{"load:labs_json", "load:meds_json", "purge:labs_json", "purge:meds_json"}, names)
		for _, s := range status {
			assert.Zero(t, s.Dispatches)
		}
	})

	mt.Run("no datasets", func(mt *mtest.T) {
		cfg := testConfig()
		cfg.LabsURL, cfg.MedsURL = "", ""
		_, err := NewExtractionModule(cfg, logger.NewNopLogger(), mt.DB, nil)
		assert.Error(t, err)
	})

	mt.Run("run on start", func(mt *mtest.T) {
		cfg := testConfig()
		cfg.RunOnStart = true
		m, err := NewExtractionModule(cfg, logger.NewNopLogger(), mt.DB, nil)
		require.NoError(t, err)

		now := time.Now()
		for _, s := range m.Scheduler.Status() {
			if s.Kind == "load" {
				assert.False(t, s.Next.After(now), s.Name)
			}
		}
	})
}
