package waitlist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobProcessor handles background jobs for waitlist operations
type JobProcessor struct {
	service Service
	config  *JobConfig
	log     *zap.Logger
	done    chan struct{}
	stop    sync.Once
	wg      sync.WaitGroup
}

// JobConfig contains configuration for background jobs
type JobConfig struct {
	DispatchEnabled     bool
	DispatchInterval    time.Duration
	ExpirySweepEnabled  bool
	ExpiryCheckInterval time.Duration
	BatchSize           int
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		DispatchEnabled:     true,
		DispatchInterval:    5 * time.Second, // Publish pending notifications every 5s
		ExpirySweepEnabled:  false,           // expires_at is informational unless enabled
		ExpiryCheckInterval: 1 * time.Minute,
		BatchSize:           100,
	}
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(service Service, config *JobConfig, log *zap.Logger) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &JobProcessor{
		service: service,
		config:  config,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start starts all enabled background jobs
func (jp *JobProcessor) Start(ctx context.Context) {
	if jp.config.DispatchEnabled {
		jp.run(ctx, "notification dispatcher", jp.config.DispatchInterval, jp.dispatchNotifications)
	}
	if jp.config.ExpirySweepEnabled {
		jp.run(ctx, "expiry sweep", jp.config.ExpiryCheckInterval, jp.expireEntries)
	}

	jp.log.Info("waitlist background jobs started",
		zap.Bool("dispatch", jp.config.DispatchEnabled),
		zap.Bool("expiry_sweep", jp.config.ExpirySweepEnabled),
	)
}

// Stop stops all background jobs and waits for the current tick to finish
func (jp *JobProcessor) Stop() {
	jp.stop.Do(func() {
		close(jp.done)
	})
	jp.wg.Wait()
	jp.log.Info("waitlist background jobs stopped")
}

func (jp *JobProcessor) run(ctx context.Context, name string, interval time.Duration, tick func(context.Context)) {
	jp.wg.Add(1)
	go func() {
		defer jp.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		jp.log.Debug("started job", zap.String("job", name), zap.Duration("interval", interval))

		for {
			select {
			case <-ticker.C:
				tick(ctx)
			case <-jp.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (jp *JobProcessor) dispatchNotifications(ctx context.Context) {
	sent, err := jp.service.DispatchPendingNotifications(ctx, jp.config.BatchSize)
	if err != nil {
		jp.log.Error("error dispatching waitlist notifications", zap.Error(err))
		return
	}

	if sent > 0 {
		jp.log.Info("dispatched waitlist notifications", zap.Int("count", sent))
	}
}

func (jp *JobProcessor) expireEntries(ctx context.Context) {
	expired, err := jp.service.ExpireOverdueEntries(ctx, jp.config.BatchSize)
	if err != nil {
		jp.log.Error("error expiring waitlist entries", zap.Error(err))
		return
	}

	if expired > 0 {
		jp.log.Debug("expired waitlist entries", zap.Int("count", expired))
	}
}

// GetJobStatus returns the status of background jobs
func (jp *JobProcessor) GetJobStatus() map[string]interface{} {
	return map[string]interface{}{
		"dispatch_enabled":      jp.config.DispatchEnabled,
		"dispatch_interval":     jp.config.DispatchInterval.String(),
		"expiry_sweep_enabled":  jp.config.ExpirySweepEnabled,
		"expiry_check_interval": jp.config.ExpiryCheckInterval.String(),
		"batch_size":            jp.config.BatchSize,
	}
}
