package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	profiles []models.Freelancer
	err      error
}

func (s staticSource) GetAll() ([]models.Freelancer, error) { return s.profiles, s.err }

type countingIndex struct {
	mu    sync.Mutex
	runs  int
	last  []models.Freelancer
	block chan struct{}
}

func (c *countingIndex) Reindex(_ context.Context, freelancers []models.Freelancer) error {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs++
	c.last = freelancers
	return nil
}

func (c *countingIndex) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}

type countingCache struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCache) InvalidateSearchCache(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestRunOnce_ReindexesAndInvalidates(t *testing.T) {
	index := &countingIndex{}
	cache := &countingCache{}
	source := staticSource{profiles: []models.Freelancer{{ID: "a"}, {ID: "b"}}}

	New(source, index, cache, "", quietLogger()).RunOnce(context.Background())

	assert.Equal(t, 1, index.count())
	assert.Len(t, index.last, 2)
	assert.Equal(t, 1, cache.calls)
}

func TestRunOnce_SourceFailureLeavesIndexAlone(t *testing.T) {
	index := &countingIndex{}
	cache := &countingCache{}

	New(staticSource{err: errors.New("db down")}, index, cache, "", quietLogger()).RunOnce(context.Background())

	assert.Zero(t, index.count())
	assert.Zero(t, cache.calls)
}

func TestRunOnce_SkipsOverlappingRuns(t *testing.T) {
	index := &countingIndex{block: make(chan struct{})}
	s := New(staticSource{}, index, nil, "", quietLogger())

	done := make(chan struct{})
	go func() {
		s.RunOnce(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.running
	}, time.Second, 5*time.Millisecond)

	s.RunOnce(context.Background())
	close(index.block)
	<-done

	assert.Equal(t, 1, index.count())
}

func TestStart_RunsImmediately(t *testing.T) {
	index := &countingIndex{}
	s := New(staticSource{}, index, nil, "@every 1h", quietLogger())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return index.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestStart_InvalidSpec(t *testing.T) {
	s := New(staticSource{}, &countingIndex{}, nil, "every now and then", quietLogger())
	assert.Error(t, s.Start(context.Background()))
}
