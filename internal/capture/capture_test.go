package capture

import (
	"context"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/qrscan/internal/scan"
	"github.com/coral-mesh/qrscan/internal/testutil"
)

func TestNew(t *testing.T) {
	logger := testutil.NewTestLogger(t)

	tests := []struct {
		name    string
		opts    Options
		want    interface{}
		wantErr string
	}{
		{name: "dir", opts: Options{Kind: KindDir, Path: "/tmp"}, want: &DirCamera{}},
		{name: "file", opts: Options{Kind: KindFile, Path: "a.png"}, want: &FileCamera{}},
		{name: "http", opts: Options{Kind: KindHTTP, URL: "http://cam/snap.jpg"}, want: &SnapshotCamera{}},
		{name: "dir without path", opts: Options{Kind: KindDir}, wantErr: "requires a path"},
		{name: "http without url", opts: Options{Kind: KindHTTP}, wantErr: "requires a url"},
		{name: "unknown", opts: Options{Kind: "v4l2"}, wantErr: "unknown camera kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam, err := New(tt.opts, logger)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, cam)
		})
	}
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("frame.PNG"))
	assert.True(t, IsImageFile("frame.webp"))
	assert.True(t, IsImageFile("frame.tiff"))
	assert.False(t, IsImageFile("notes.txt"))
	assert.False(t, IsImageFile("README"))
}

func TestDirCamera_PlaysInOrder(t *testing.T) {
	dir := t.TempDir()
	testutil.WritePNG(t, dir, "b.png", testutil.NewBlankImage(20, 10))
	testutil.WritePNG(t, dir, "a.png", testutil.NewBlankImage(10, 10))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	cam := &DirCamera{Dir: dir}
	capture, err := cam.Open(context.Background())
	require.NoError(t, err)
	defer func() { _ = capture.Close() }()

	ctx := context.Background()

	first, ok := capture.TryFrame(ctx)
	require.True(t, ok)
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, 10, first.Bounds().Dx())

	second, ok := capture.TryFrame(ctx)
	require.True(t, ok)
	assert.Equal(t, uint64(2), second.Seq)
	assert.Equal(t, 20, second.Bounds().Dx())

	_, ok = capture.TryFrame(ctx)
	assert.False(t, ok, "expected exhausted source without loop")
}

func TestDirCamera_Loop(t *testing.T) {
	dir := t.TempDir()
	testutil.WritePNG(t, dir, "only.png", testutil.NewBlankImage(8, 8))

	capture, err := (&DirCamera{Dir: dir, Loop: true}).Open(context.Background())
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		frame, ok := capture.TryFrame(context.Background())
		require.True(t, ok)
		assert.Equal(t, uint64(i), frame.Seq)
	}

	require.NoError(t, capture.Close())
	_, ok := capture.TryFrame(context.Background())
	assert.False(t, ok, "expected no frames after close")
}

func TestDirCamera_SkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("not a png"), 0o644))
	testutil.WritePNG(t, dir, "b.png", testutil.NewBlankImage(8, 8))

	capture, err := (&DirCamera{Dir: dir}).Open(context.Background())
	require.NoError(t, err)

	frame, ok := capture.TryFrame(context.Background())
	require.True(t, ok)
	assert.Equal(t, uint64(1), frame.Seq)
}

func TestDirCamera_Empty(t *testing.T) {
	_, err := (&DirCamera{Dir: t.TempDir()}).Open(context.Background())
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = (&DirCamera{Dir: filepath.Join(t.TempDir(), "missing")}).Open(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileCamera(t *testing.T) {
	path := testutil.WritePNG(t, t.TempDir(), "still.png", testutil.NewBlankImage(30, 20))

	capture, err := (&FileCamera{Path: path}).Open(context.Background())
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		frame, ok := capture.TryFrame(context.Background())
		require.True(t, ok)
		assert.Equal(t, uint64(i), frame.Seq)
		assert.Equal(t, 30, frame.Bounds().Dx())
	}

	_, err = (&FileCamera{Path: filepath.Join(t.TempDir(), "nope.png")}).Open(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func snapshotServer(t *testing.T, fail *atomic.Bool) *httptest.Server {
	t.Helper()
	img := testutil.NewBlankImage(64, 48)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail != nil && fail.Load() {
			http.Error(w, "camera offline", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSnapshotCamera(t *testing.T) {
	var fail atomic.Bool
	srv := snapshotServer(t, &fail)

	cam := &SnapshotCamera{URL: srv.URL, Logger: testutil.NewTestLogger(t)}
	capture, err := cam.Open(context.Background())
	require.NoError(t, err)
	defer func() { _ = capture.Close() }()

	frame, ok := capture.TryFrame(context.Background())
	require.True(t, ok)
	assert.Equal(t, uint64(1), frame.Seq)
	assert.Equal(t, 64, frame.Bounds().Dx())

	fail.Store(true)
	_, ok = capture.TryFrame(context.Background())
	assert.False(t, ok)

	fail.Store(false)
	frame, ok = capture.TryFrame(context.Background())
	require.True(t, ok)
	assert.Equal(t, uint64(2), frame.Seq)
}

func TestSnapshotCamera_OpenFailsOnBadStatus(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := snapshotServer(t, &fail)

	_, err := (&SnapshotCamera{URL: srv.URL}).Open(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSnapshotCamera_FrameTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	cam := &SnapshotCamera{URL: srv.URL, FrameTimeout: 20 * time.Millisecond}

	started := time.Now()
	_, err := cam.Open(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(started), time.Second)
}

type flakyCamera struct {
	failures int
	err      error
	opens    int
}

func (c *flakyCamera) Open(ctx context.Context) (scan.Capture, error) {
	c.opens++
	if c.opens <= c.failures {
		return nil, c.err
	}
	return NewStill(testutil.NewBlankImage(4, 4)), nil
}

func TestWithRetry(t *testing.T) {
	logger := testutil.NewTestLogger(t)

	t.Run("transient failures", func(t *testing.T) {
		inner := &flakyCamera{failures: 2, err: errors.New("device busy")}
		capture, err := WithRetry(inner, 3, time.Millisecond, logger).Open(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, capture)
		assert.Equal(t, 3, inner.opens)
	})

	t.Run("exhausted", func(t *testing.T) {
		inner := &flakyCamera{failures: 5, err: errors.New("device busy")}
		_, err := WithRetry(inner, 3, time.Millisecond, logger).Open(context.Background())
		require.Error(t, err)
		assert.Equal(t, 3, inner.opens)
	})

	t.Run("empty source is permanent", func(t *testing.T) {
		inner := &flakyCamera{failures: 5, err: ErrEmptySource}
		_, err := WithRetry(inner, 3, time.Millisecond, logger).Open(context.Background())
		assert.ErrorIs(t, err, ErrEmptySource)
		assert.Equal(t, 1, inner.opens)
	})
}

func TestProbe(t *testing.T) {
	path := testutil.WritePNG(t, t.TempDir(), "still.png", testutil.NewBlankImage(40, 30))

	res, err := Probe(context.Background(), &FileCamera{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 40, res.Width)
	assert.Equal(t, 30, res.Height)

	_, err = Probe(context.Background(), &DirCamera{Dir: t.TempDir()})
	var camErr *scan.CameraError
	require.ErrorAs(t, err, &camErr)
	assert.Equal(t, "open", camErr.Op)
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestProbe_NoFrame(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("garbage"), 0o644))

	_, err := Probe(context.Background(), &DirCamera{Dir: dir, Logger: testutil.NewTestLogger(t)})
	assert.ErrorIs(t, err, ErrNoFrame)
}
