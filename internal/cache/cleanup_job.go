package cache

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CleanupJob removes expired entries from the file-backed cache store.
// Scheduled to run daily; expired rows are already invisible to readers,
// this just reclaims disk.
type CleanupJob struct {
	store *Store
	log   zerolog.Logger
}

// NewCleanupJob creates a new cache cleanup job.
func NewCleanupJob(store *Store, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		store: store,
		log:   log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Run executes the cleanup job.
func (j *CleanupJob) Run() {
	deleted, err := j.store.DeleteExpired()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired cache entries")
		return
	}
	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Msg("Cache cleanup completed")
	}
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule registers the job on the given cron runner at 04:00 daily.
func (j *CleanupJob) Schedule(c *cron.Cron) error {
	_, err := c.AddJob("0 4 * * *", j)
	return err
}
