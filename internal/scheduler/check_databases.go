package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hamza-spc/CountryCompare/internal/database"
)

// CheckDatabasesJob runs sqlite integrity checks and truncates WAL files
// on every registered database.
type CheckDatabasesJob struct {
	databases []*database.DB
	timeout   time.Duration
	log       zerolog.Logger
}

// NewCheckDatabasesJob creates a database health check job
func NewCheckDatabasesJob(databases []*database.DB, log zerolog.Logger) *CheckDatabasesJob {
	return &CheckDatabasesJob{
		databases: databases,
		timeout:   30 * time.Second,
		log:       log.With().Str("job", "check_databases").Logger(),
	}
}

// Name returns the job name
func (j *CheckDatabasesJob) Name() string {
	return "check_databases"
}

// Run checks every database and reports the first failure
func (j *CheckDatabasesJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	for _, db := range j.databases {
		if err := db.QuickCheck(ctx); err != nil {
			return fmt.Errorf("integrity check failed for %s: %w", db.Name(), err)
		}

		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
		}
	}

	j.log.Debug().Int("databases", len(j.databases)).Msg("Database health check passed")
	return nil
}
