package sweeper_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/adboard/internal/logger"
	"github.com/jonesrussell/adboard/internal/sweeper"
)

type fakeStore struct {
	pruned  int
	evicted int
}

func (f *fakeStore) Prune() int {
	f.pruned++
	return f.evicted
}

func (f *fakeStore) Len() int { return 0 }

func TestSweepPrunesAllTargets(t *testing.T) {
	t.Parallel()

	s := sweeper.New(time.Minute, logger.NewNoOp())

	first := &fakeStore{evicted: 3}
	second := &fakeStore{}
	s.Register("parse-cache", first)
	s.Register("mirror", second)

	s.Sweep()
	s.Sweep()

	assert.Equal(t, 2, first.pruned)
	assert.Equal(t, 2, second.pruned)
}

func TestStartAndStop(t *testing.T) {
	t.Parallel()

	s := sweeper.New(time.Hour, logger.NewNoOp())
	s.Register("parse-cache", &fakeStore{})

	require.NoError(t, s.Start())
	s.Stop()
}
