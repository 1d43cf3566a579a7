package filepond

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"filepond/internal/storage"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

type testEnv struct {
	db    *gorm.DB
	repo  Repository
	disk  *storage.LocalDisk
	disks *storage.Manager
	cfg   Config
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:filepond_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err, "failed to open sqlite db")
	require.NoError(t, db.AutoMigrate(&Upload{}), "failed to migrate db")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the sweeper goroutine and the test from locking each other
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	disk := storage.NewLocalDiskFs(afero.NewMemMapFs())
	disks := storage.NewManager()
	disks.Register("local", disk)

	return &testEnv{
		db:    db,
		repo:  NewRepository(db),
		disk:  disk,
		disks: disks,
		cfg: Config{
			Disk:            "local",
			TempDir:         "temp",
			ValidationRules: "required|file|max:5000",
		},
	}
}

func (e *testEnv) filepond(opts ...Option) *Filepond {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(e.repo, e.disks, nil, e.cfg, opts...)
}

// stage stores content under temp/ and creates its record.
func (e *testEnv) stage(t *testing.T, id, ext, content string) *Upload {
	t.Helper()

	p := "temp/" + storedName(id, ext)
	_, err := e.disk.Put(context.Background(), p, strings.NewReader(content))
	require.NoError(t, err)

	u := &Upload{
		ID:        id,
		Filepath:  p,
		Filename:  "original." + ext,
		Extension: ext,
		Mimetypes: "application/octet-stream",
		Size:      int64(len(content)),
		Disk:      "local",
		CreatedBy: 7,
	}
	require.NoError(t, e.repo.Create(context.Background(), u))
	return u
}

func (e *testEnv) read(t *testing.T, p string) string {
	t.Helper()

	rc, err := e.disk.Open(context.Background(), p)
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func (e *testEnv) exists(t *testing.T, p string) bool {
	t.Helper()

	ok, err := e.disk.Exists(context.Background(), p)
	require.NoError(t, err)
	return ok
}

func (e *testEnv) countRecords(t *testing.T, id string, unscoped bool) int64 {
	t.Helper()

	q := e.db.Model(&Upload{})
	if unscoped {
		q = q.Unscoped()
	}
	var n int64
	require.NoError(t, q.Where("id = ?", id).Count(&n).Error)
	return n
}
