package capture_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mockinterview/internal/capture"
	"mockinterview/internal/config"
	"mockinterview/internal/logging"
	"mockinterview/internal/services"
)

func TestManagerAcquireAndReleaseIdempotent(t *testing.T) {
	source := &capture.StaticSource{}
	mgr := capture.NewManager(source, logging.NewNop())

	preview, err := mgr.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if len(preview.Tracks) != 2 {
		t.Fatalf("expected audio+video tracks, got %+v", preview.Tracks)
	}
	again, err := mgr.Acquire(context.Background())
	if err != nil || again.StreamID != preview.StreamID {
		t.Fatalf("expected held stream to be reused, got %+v err=%v", again, err)
	}
	if source.Opened() != 1 {
		t.Fatalf("expected one open, got %d", source.Opened())
	}
	if _, ok := mgr.Preview(); !ok {
		t.Fatal("expected preview while holding")
	}

	for i := 0; i < 3; i++ {
		if err := mgr.Release(); err != nil {
			t.Fatalf("Release #%d returned error: %v", i+1, err)
		}
	}
	if mgr.Holding() || source.LiveTracks() != 0 {
		t.Fatalf("expected all tracks stopped, live=%d", source.LiveTracks())
	}
	if _, ok := mgr.Preview(); ok {
		t.Fatal("expected no preview after release")
	}
}

func TestManagerAcquireFailureIsDeviceUnavailable(t *testing.T) {
	source := &capture.StaticSource{Fail: errors.New("permission denied")}
	mgr := capture.NewManager(source, nil)
	_, err := mgr.Acquire(context.Background())
	if !errors.Is(err, services.ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
	if mgr.Holding() {
		t.Fatal("expected no stream after failure")
	}
	if err := mgr.Release(); err != nil {
		t.Fatalf("Release after failure returned error: %v", err)
	}
}

func TestManagerReleaseAfterReserveCancelsAcquisition(t *testing.T) {
	source := &capture.StaticSource{}
	mgr := capture.NewManager(source, nil)

	token := mgr.Reserve()
	if err := mgr.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if _, err := mgr.AcquireReserved(context.Background(), token); !errors.Is(err, services.ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable for a stale reservation, got %v", err)
	}
	if mgr.Holding() || source.LiveTracks() != 0 {
		t.Fatalf("expected nothing held, %d tracks live", source.LiveTracks())
	}

	if _, err := mgr.AcquireReserved(context.Background(), mgr.Reserve()); err != nil {
		t.Fatalf("fresh reservation failed: %v", err)
	}
	if !mgr.Holding() {
		t.Fatal("expected stream held after fresh reservation")
	}
}

// blockingSource lets the test release the manager while Open is in flight.
type blockingSource struct {
	inner   *capture.StaticSource
	started chan struct{}
	proceed chan struct{}
}

func (b *blockingSource) Open(ctx context.Context) (*capture.Stream, error) {
	close(b.started)
	<-b.proceed
	return b.inner.Open(ctx)
}

func TestManagerReleaseDuringAcquireStopsLateStream(t *testing.T) {
	inner := &capture.StaticSource{}
	src := &blockingSource{inner: inner, started: make(chan struct{}), proceed: make(chan struct{})}
	mgr := capture.NewManager(src, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := mgr.Acquire(context.Background())
		errCh <- err
	}()
	<-src.started
	if err := mgr.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	close(src.proceed)

	if err := <-errCh; !errors.Is(err, services.ErrDeviceUnavailable) {
		t.Fatalf("expected superseded acquire to fail, got %v", err)
	}
	if inner.LiveTracks() != 0 || mgr.Holding() {
		t.Fatalf("expected late stream to be stopped, live=%d", inner.LiveTracks())
	}
}

func TestNoneSourceAlwaysUnavailable(t *testing.T) {
	if _, err := (capture.NoneSource{}).Open(context.Background()); !errors.Is(err, services.ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestDeviceNodeSourceRejectsRegularFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"video0", "pcmC0D0c"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write fake node: %v", err)
		}
	}
	src := capture.DeviceNodeSource{
		VideoPattern: filepath.Join(dir, "video*"),
		AudioPattern: filepath.Join(dir, "pcmC*D*c"),
	}
	if _, err := src.Open(context.Background()); !errors.Is(err, services.ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable for regular files, got %v", err)
	}
	video, audio := src.Candidates()
	if len(video) != 0 || len(audio) != 0 {
		t.Fatalf("expected no character devices, got %v %v", video, audio)
	}
}

func TestDeviceNodeSourceOpensCharacterDevices(t *testing.T) {
	if _, err := os.Stat("/dev/null"); err != nil {
		t.Skip("/dev/null not available")
	}
	src := capture.DeviceNodeSource{VideoPattern: "/dev/null", AudioPattern: "/dev/zero"}
	stream, err := src.Open(context.Background())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if len(stream.Tracks) != 2 || stream.Tracks[0].Kind() != capture.KindVideo {
		t.Fatalf("unexpected tracks %+v", stream.Tracks)
	}
	if err := stream.Stop(); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if err := stream.Stop(); err != nil {
		t.Fatalf("second Stop returned error: %v", err)
	}
}

func TestNewSourceFollowsBackend(t *testing.T) {
	cfg := config.Default()
	if _, ok := capture.NewSource(&cfg).(capture.DeviceNodeSource); !ok {
		t.Fatal("expected device source for default backend")
	}
	cfg.Capture.Backend = config.CaptureNone
	if _, ok := capture.NewSource(&cfg).(capture.NoneSource); !ok {
		t.Fatal("expected none source")
	}
}
