package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/logging"
)

type fakeDistributor struct {
	runs atomic.Int32
}

func (f *fakeDistributor) Distribute(ctx context.Context) (*types.DistributionResult, error) {
	f.runs.Add(1)
	return &types.DistributionResult{Day: "2026-07-01", Processed: 1, Bonused: 1}, nil
}

func TestStartRunsCatchUp(t *testing.T) {
	engine := &fakeDistributor{}
	s := New(engine, &logging.NoopLogger{}, "0 0 * * *", true)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return engine.runs.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestStartWithoutCatchUp(t *testing.T) {
	engine := &fakeDistributor{}
	s := New(engine, &logging.NoopLogger{}, "0 0 * * *", false)

	require.NoError(t, s.Start())
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	assert.Zero(t, engine.runs.Load())
}

func TestCronFiresInUTC(t *testing.T) {
	s := New(&fakeDistributor{}, &logging.NoopLogger{}, "0 0 * * *", false)
	assert.Equal(t, time.UTC, s.cron.Location())
}

func TestStartRejectsBadCronSpec(t *testing.T) {
	s := New(&fakeDistributor{}, &logging.NoopLogger{}, "not a cron spec", false)
	require.Error(t, s.Start())
}
