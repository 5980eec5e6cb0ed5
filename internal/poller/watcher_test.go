package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/disparabot/admin/internal/models"
)

func TestStepReportsOnlyEdges(t *testing.T) {
	observations := []string{"closed", "closed", "open", "open", "closed"}
	wantReports := []bool{true, false, true, false, true}

	last := ""
	for i, observed := range observations {
		report, next := Step(observed, last)
		assert.Equal(t, wantReports[i], report, "observation %d (%s)", i, observed)
		assert.Equal(t, observed, next)
		last = next
	}
}

func TestStepFirstObservationAlwaysReports(t *testing.T) {
	report, next := Step("closed", "")
	assert.True(t, report)
	assert.Equal(t, "closed", next)
}

type WatcherTestSuite struct {
	suite.Suite
	watcher *Watcher

	mu      sync.Mutex
	changes []string
}

func TestWatcherTestSuite(t *testing.T) {
	suite.Run(t, new(WatcherTestSuite))
}

func (s *WatcherTestSuite) SetupTest() {
	s.changes = nil
	statusFn := func(ctx context.Context, instanceID int64) (*models.InstanceStatus, error) {
		return &models.InstanceStatus{State: models.StateOpen}, nil
	}
	onChange := func(instanceID int64, connection, qrCode string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.changes = append(s.changes, connection)
	}
	watcher, err := NewWatcher(statusFn, onChange, time.Second)
	require.NoError(s.T(), err)
	s.watcher = watcher
}

func (s *WatcherTestSuite) TearDownTest() {
	_ = s.watcher.Stop()
}

func (s *WatcherTestSuite) observed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.changes...)
}

func (s *WatcherTestSuite) TestObserveFiresOnConnectionFlips() {
	s.watcher.Observe(1, &models.InstanceStatus{State: "closed"})
	s.watcher.Observe(1, &models.InstanceStatus{State: "closed"})
	s.watcher.Observe(1, &models.InstanceStatus{State: models.StateOpen})
	s.watcher.Observe(1, &models.InstanceStatus{State: models.StateOpen})
	s.watcher.Observe(1, &models.InstanceStatus{State: "closed"})

	assert.Equal(s.T(), []string{
		models.ConnectionDisconnected,
		models.ConnectionConnected,
		models.ConnectionDisconnected,
	}, s.observed())
}

func (s *WatcherTestSuite) TestObserveTracksInstancesIndependently() {
	s.watcher.Observe(1, &models.InstanceStatus{State: models.StateOpen})
	s.watcher.Observe(2, &models.InstanceStatus{State: models.StateOpen})
	s.watcher.Observe(1, &models.InstanceStatus{State: models.StateOpen})

	assert.Len(s.T(), s.observed(), 2)

	snapshot := s.watcher.Snapshot()
	assert.Equal(s.T(), models.ConnectionConnected, snapshot[1])
	assert.Equal(s.T(), models.ConnectionConnected, snapshot[2])
}

func (s *WatcherTestSuite) TestWatchIsIdempotent() {
	require.NoError(s.T(), s.watcher.Watch(1))
	require.NoError(s.T(), s.watcher.Watch(1))

	s.watcher.Unwatch(1)
	snapshot := s.watcher.Snapshot()
	assert.NotContains(s.T(), snapshot, int64(1))
}

func (s *WatcherTestSuite) TestSyncReconcilesWatchedSet() {
	require.NoError(s.T(), s.watcher.Watch(1))
	require.NoError(s.T(), s.watcher.Watch(2))
	s.watcher.Observe(2, &models.InstanceStatus{State: models.StateOpen})

	s.watcher.Sync([]int64{2, 3})

	snapshot := s.watcher.Snapshot()
	assert.NotContains(s.T(), snapshot, int64(1))
	assert.Equal(s.T(), models.ConnectionConnected, snapshot[2])
}

func (s *WatcherTestSuite) TestUnwatchForgetsLastStatus() {
	s.watcher.Observe(1, &models.InstanceStatus{State: "closed"})
	s.watcher.Unwatch(1)

	// the next observation is an edge again
	s.watcher.Observe(1, &models.InstanceStatus{State: "closed"})
	assert.Len(s.T(), s.observed(), 2)
}
