package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"scribe/internal/api"
	"scribe/internal/config"
	"scribe/internal/jobs"
	"scribe/internal/logging"
)

// Daemon coordinates the HTTP API and background job execution, and enforces
// single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *jobs.Store
	service *api.Service

	lockPath string
	lock     *flock.Flock

	server *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *jobs.Store, service *api.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || service == nil {
		return nil, errors.New("daemon requires config, job store, and batch service")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "scribed.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		service:  service,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	server, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.server = server
	return d, nil
}

// Start acquires the daemon lock and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another scribe daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if d.server != nil {
		if err := d.server.start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("scribe daemon started",
		logging.String("lock", d.lockPath),
		logging.String("jobs_db", d.store.Path()))
	return nil
}

// Stop shuts down the API, waits for in-flight jobs, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.server != nil {
		d.server.stop()
	}
	d.workers.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("scribe daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon has started and not yet stopped.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// APIAddr returns the bound API listen address, empty when the API is
// disabled or not yet started.
func (d *Daemon) APIAddr() string {
	return d.server.Addr()
}

// submitJob registers an asynchronous batch and launches it on a background
// worker. The worker runs under the daemon context, so daemon shutdown cancels
// unfinished jobs.
func (d *Daemon) submitJob(ctx context.Context, req api.JobRequest) (*jobs.Job, error) {
	job, err := d.store.Create(ctx, req.Input)
	if err != nil {
		return nil, err
	}

	d.workers.Add(1)
	go func() {
		defer d.workers.Done()
		d.runJob(d.ctx, job.ID, req)
	}()
	return job, nil
}

func (d *Daemon) runJob(ctx context.Context, id string, req api.JobRequest) {
	logger := d.logger.With(logging.String(logging.FieldBatchID, id))

	if err := d.store.MarkRunning(ctx, id); err != nil {
		logger.Error("failed to record job start", logging.Error(err))
	}

	response, err := d.service.RunBatch(ctx, api.BatchParams{
		Input:         req.Input,
		IncludeImages: req.IncludeImages,
	})
	if err != nil {
		logger.Warn("job failed", logging.Error(err))
		if markErr := d.store.MarkFailed(context.WithoutCancel(ctx), id, err.Error()); markErr != nil {
			logger.Error("failed to record job failure", logging.Error(markErr))
		}
		return
	}

	if err := d.store.MarkCompleted(context.WithoutCancel(ctx), id,
		response.Succeeded, response.Failed, response.ArtifactPath); err != nil {
		logger.Error("failed to record job completion", logging.Error(err))
		return
	}
	logger.Info("job completed",
		logging.Int("succeeded", response.Succeeded),
		logging.Int("failed", response.Failed))
}
