package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmill/momentum/pkg/logger"
)

type noopJob struct{}

func (noopJob) Name() string                { return "noop" }
func (noopJob) Run(_ context.Context) error { return nil }

func TestScheduler_Register(t *testing.T) {
	s := New(logger.NewNop())

	err := s.Register("0 10 1 * *", noopJob{})
	require.NoError(t, err)
}

func TestScheduler_RegisterInvalidSpec(t *testing.T) {
	s := New(logger.NewNop())

	err := s.Register("not a cron spec", noopJob{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "noop")
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(logger.NewNop())
	require.NoError(t, s.Register("0 10 1 * *", noopJob{}))

	s.Start()
	s.Stop()
}
