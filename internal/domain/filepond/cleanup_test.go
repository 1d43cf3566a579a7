package filepond

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"filepond/internal/pkg/logging"
	"filepond/internal/pkg/metrics"
)

func (e *testEnv) stageAt(t *testing.T, id string, createdAt time.Time) {
	t.Helper()

	u := e.stage(t, id, "txt", "payload-"+id)
	require.NoError(t, e.db.Model(&Upload{}).Where("id = ?", u.ID).
		UpdateColumn("created_at", createdAt).Error)
}

func newCleanup(env *testEnv, m *metrics.Metrics) *CleanupService {
	c := NewCleanupService(env.repo, env.disks, m)
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestSweep_RemovesOnlyStrictlyExpired(t *testing.T) {
	env := newTestEnv(t)
	env.stageAt(t, "old", fixedNow.Add(-2*time.Hour))
	env.stageAt(t, "edge", fixedNow.Add(-30*time.Minute))
	env.stageAt(t, "fresh", fixedNow.Add(-time.Minute))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	res, err := newCleanup(env, m).Sweep(context.Background(), 30*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, int64(len("payload-old")), res.Bytes)
	assert.Equal(t, int64(0), env.countRecords(t, "old", true))
	assert.False(t, env.exists(t, "temp/old.txt"))

	for _, id := range []string{"edge", "fresh"} {
		assert.Equal(t, int64(1), env.countRecords(t, id, true), id)
		assert.True(t, env.exists(t, "temp/"+id+".txt"), id)
	}

	rr := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rr.Body.String(), `filepond_operations_total{op="sweep",status="ok"} 1`)
	assert.Contains(t, rr.Body.String(), "filepond_swept_bytes_total 11")
}

func TestSweep_IncludesSoftDeleted(t *testing.T) {
	env := newTestEnv(t)
	env.stageAt(t, "old", fixedNow.Add(-time.Hour))
	require.NoError(t, env.repo.SoftDelete(context.Background(), "old"))

	res, err := newCleanup(env, nil).Sweep(context.Background(), 30*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, int64(0), env.countRecords(t, "old", true))
	assert.False(t, env.exists(t, "temp/old.txt"))
}

func TestSweep_ToleratesMissingFiles(t *testing.T) {
	env := newTestEnv(t)
	env.stageAt(t, "moved", fixedNow.Add(-time.Hour))
	require.NoError(t, env.disk.Delete(context.Background(), "temp/moved.txt"))

	res, err := newCleanup(env, nil).Sweep(context.Background(), 30*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, int64(0), env.countRecords(t, "moved", true))
}

func TestSweep_SkipsUnknownDisk(t *testing.T) {
	env := newTestEnv(t)
	env.stageAt(t, "elsewhere", fixedNow.Add(-time.Hour))
	require.NoError(t, env.db.Model(&Upload{}).Where("id = ?", "elsewhere").UpdateColumn("disk", "gcs").Error)

	var buf bytes.Buffer
	logging.SetOutput(&buf, false)
	t.Cleanup(func() { logging.SetOutput(&bytes.Buffer{}, false) })

	res, err := newCleanup(env, nil).Sweep(context.Background(), 30*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Deleted)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, int64(1), env.countRecords(t, "elsewhere", true))
	assert.True(t, strings.Contains(buf.String(), "unknown disk"))
	assert.Contains(t, buf.String(), "id=elsewhere")
	assert.Contains(t, buf.String(), "disk=gcs")
}

func TestSweepAll(t *testing.T) {
	env := newTestEnv(t)
	env.stageAt(t, "a", fixedNow.Add(-time.Hour))
	env.stageAt(t, "b", fixedNow)

	res, err := newCleanup(env, nil).SweepAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Deleted)
	assert.False(t, env.exists(t, "temp/a.txt"))
	assert.False(t, env.exists(t, "temp/b.txt"))
}

func TestSweep_ListErrorAndBadWindow(t *testing.T) {
	repo := new(mockRepo)
	repo.On("ListExpired", mock.Anything, fixedNow.Add(-time.Minute)).Return(nil, errors.New("timeout"))

	c := NewCleanupService(repo, nil, nil)
	c.now = func() time.Time { return fixedNow }

	_, err := c.Sweep(context.Background(), time.Minute)
	assert.ErrorContains(t, err, "timeout")

	_, err = c.Sweep(context.Background(), 0)
	assert.Error(t, err)
	repo.AssertExpectations(t)
}

func TestScheduleCleanup(t *testing.T) {
	env := newTestEnv(t)
	c := newCleanup(env, nil)

	assert.Nil(t, c.ScheduleCleanup(context.Background(), CleanupConfig{EnableAutomatic: false}))

	env.stageAt(t, "old", fixedNow.Add(-time.Hour))
	stop := c.ScheduleCleanup(context.Background(), CleanupConfig{
		Expiration:      30 * time.Minute,
		Interval:        10 * time.Millisecond,
		EnableAutomatic: true,
	})
	require.NotNil(t, stop)
	defer close(stop)

	assert.Eventually(t, func() bool {
		var n int64
		err := env.db.Unscoped().Model(&Upload{}).Where("id = ?", "old").Count(&n).Error
		return err == nil && n == 0
	}, 2*time.Second, 20*time.Millisecond)
}
