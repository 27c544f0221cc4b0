package waitlist

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// countingService records background job calls. Other Service methods are not used by jobs.
type countingService struct {
	Service
	dispatches atomic.Int32
	expiries   atomic.Int32
	failExpiry bool
}

func (s *countingService) DispatchPendingNotifications(ctx context.Context, limit int) (int, error) {
	s.dispatches.Add(1)
	return 1, nil
}

func (s *countingService) ExpireOverdueEntries(ctx context.Context, limit int) (int, error) {
	s.expiries.Add(1)
	if s.failExpiry {
		return 0, errors.New("store down")
	}
	return 0, nil
}

func TestJobProcessorRunsEnabledJobs(t *testing.T) {
	svc := &countingService{failExpiry: true}
	jp := NewJobProcessor(svc, &JobConfig{
		DispatchEnabled:     true,
		DispatchInterval:    5 * time.Millisecond,
		ExpirySweepEnabled:  true,
		ExpiryCheckInterval: 5 * time.Millisecond,
		BatchSize:           10,
	}, zap.NewNop())

	jp.Start(context.Background())

	assert.Eventually(t, func() bool {
		return svc.dispatches.Load() >= 2 && svc.expiries.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	jp.Stop()
	dispatches := svc.dispatches.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, dispatches, svc.dispatches.Load())

	// Stop is safe to call twice.
	jp.Stop()
}

func TestJobProcessorExpirySweepIsOptIn(t *testing.T) {
	svc := &countingService{}
	config := DefaultJobConfig()
	config.DispatchInterval = 5 * time.Millisecond
	config.ExpiryCheckInterval = 5 * time.Millisecond
	assert.False(t, config.ExpirySweepEnabled)

	ctx, cancel := context.WithCancel(context.Background())
	jp := NewJobProcessor(svc, config, nil)
	jp.Start(ctx)

	assert.Eventually(t, func() bool { return svc.dispatches.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
	jp.Stop()

	assert.Zero(t, svc.expiries.Load())
	assert.Equal(t, false, jp.GetJobStatus()["expiry_sweep_enabled"])
}
