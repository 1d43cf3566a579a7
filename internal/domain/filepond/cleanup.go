package filepond

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"filepond/internal/pkg/logging"
	"filepond/internal/pkg/metrics"
	"filepond/internal/storage"
)

// CleanupService removes staged uploads nobody committed.
type CleanupService struct {
	repo    Repository
	disks   Disks
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewCleanupService(repo Repository, disks Disks, m *metrics.Metrics) *CleanupService {
	return &CleanupService{repo: repo, disks: disks, metrics: m, now: time.Now}
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Deleted int
	Skipped int
	Bytes   int64
}

// Sweep hard-deletes every record, soft-deleted or not, created strictly
// before now-expiration, together with its file.
func (c *CleanupService) Sweep(ctx context.Context, expiration time.Duration) (SweepResult, error) {
	if expiration <= 0 {
		return SweepResult{}, fmt.Errorf("expiration must be > 0, got %v", expiration)
	}
	cutoff := c.now().Add(-expiration)
	uploads, err := c.repo.ListExpired(ctx, cutoff)
	if err != nil {
		c.metrics.Observe("sweep", err)
		return SweepResult{}, fmt.Errorf("list expired uploads: %w", err)
	}
	return c.sweep(ctx, uploads)
}

// SweepAll removes every staged upload regardless of age.
func (c *CleanupService) SweepAll(ctx context.Context) (SweepResult, error) {
	uploads, err := c.repo.ListAll(ctx)
	if err != nil {
		c.metrics.Observe("sweep", err)
		return SweepResult{}, fmt.Errorf("list uploads: %w", err)
	}
	return c.sweep(ctx, uploads)
}

func (c *CleanupService) sweep(ctx context.Context, uploads []*Upload) (SweepResult, error) {
	startTime := time.Now()
	var res SweepResult

	for _, u := range uploads {
		if err := ctx.Err(); err != nil {
			c.metrics.Observe("sweep", err)
			return res, err
		}

		log := logging.With("id", u.ID, "disk", u.Disk)
		disk, err := c.disks.Disk(u.Disk)
		if err != nil {
			log.Warn("sweep: unknown disk")
			res.Skipped++
			continue
		}
		size, _ := disk.Size(ctx, u.Filepath)

		// already moved or removed files still drop the record
		if err := disk.Delete(ctx, u.Filepath); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Error("sweep: delete file", "path", u.Filepath, "err", err)
			res.Skipped++
			continue
		}
		if err := c.repo.ForceDelete(ctx, u.ID); err != nil && !errors.Is(err, ErrUploadNotFound) {
			log.Error("sweep: delete record", "err", err)
			res.Skipped++
			continue
		}

		res.Deleted++
		res.Bytes += size
	}

	c.metrics.Observe("sweep", nil)
	c.metrics.AddSweptBytes(res.Bytes)
	logging.Info("sweep completed",
		"deleted", res.Deleted,
		"skipped", res.Skipped,
		"reclaimed", humanize.IBytes(uint64(res.Bytes)),
		"took", time.Since(startTime),
	)
	return res, nil
}

// CleanupConfig drives the in-process sweeper.
type CleanupConfig struct {
	Expiration      time.Duration
	Interval        time.Duration
	EnableAutomatic bool
}

// ScheduleCleanup sweeps every Interval until ctx is done or the returned
// channel is closed. It returns nil when automatic cleanup is disabled.
func (c *CleanupService) ScheduleCleanup(ctx context.Context, cfg CleanupConfig) chan struct{} {
	if !cfg.EnableAutomatic || cfg.Interval <= 0 {
		logging.Info("automatic upload cleanup is disabled")
		return nil
	}

	stopCh := make(chan struct{})

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := c.Sweep(ctx, cfg.Expiration); err != nil {
					logging.Error("scheduled sweep failed", "err", err)
				}
			case <-stopCh:
				logging.Info("scheduled cleanup stopped")
				return
			case <-ctx.Done():
				logging.Info("scheduled cleanup stopped", "reason", ctx.Err())
				return
			}
		}
	}()

	logging.Info("scheduled cleanup started", "interval", cfg.Interval, "expiration", cfg.Expiration)
	return stopCh
}
