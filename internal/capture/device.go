package capture

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"mockinterview/internal/services"
)

// DeviceNodeSource opens the first usable video and audio capture nodes
// matched by its glob patterns.
type DeviceNodeSource struct {
	VideoPattern string
	AudioPattern string
}

// Open validates and opens one video and one audio node.
func (s DeviceNodeSource) Open(ctx context.Context) (*Stream, error) {
	video, err := openFirstNode(ctx, KindVideo, s.VideoPattern)
	if err != nil {
		return nil, err
	}
	audio, err := openFirstNode(ctx, KindAudio, s.AudioPattern)
	if err != nil {
		_ = video.Stop()
		return nil, err
	}
	return &Stream{
		ID:         uuid.NewString(),
		Tracks:     []Track{video, audio},
		AcquiredAt: time.Now().UTC(),
	}, nil
}

// Candidates lists the character devices the patterns currently match.
func (s DeviceNodeSource) Candidates() (video, audio []string) {
	return charDevices(s.VideoPattern), charDevices(s.AudioPattern)
}

func openFirstNode(ctx context.Context, kind Kind, pattern string) (*nodeTrack, error) {
	if pattern == "" {
		return nil, services.Wrap(services.ErrDeviceUnavailable, "capture", "open "+string(kind), "no device pattern configured", nil)
	}
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "capture", "open "+string(kind), "invalid device pattern", err)
	}
	sort.Strings(paths)

	var lastErr error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !isCharDevice(path) {
			lastErr = fmt.Errorf("%s is not a character device", path)
			continue
		}
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if err != nil {
			if errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM) {
				lastErr = fmt.Errorf("permission denied for %s: %w", path, err)
			} else {
				lastErr = fmt.Errorf("open %s: %w", path, err)
			}
			continue
		}
		return &nodeTrack{kind: kind, path: path, fd: fd}, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no %s device matches %s", kind, pattern)
	}
	return nil, services.Wrap(services.ErrDeviceUnavailable, "capture", "open "+string(kind), "no usable device", lastErr)
}

func charDevices(pattern string) []string {
	if pattern == "" {
		return nil
	}
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}
	sort.Strings(paths)
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if isCharDevice(path) {
			out = append(out, path)
		}
	}
	return out
}

func isCharDevice(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false
	}
	return st.Mode&unix.S_IFMT == unix.S_IFCHR
}

type nodeTrack struct {
	kind Kind
	path string

	once sync.Once
	fd   int
	err  error
}

func (t *nodeTrack) Kind() Kind    { return t.kind }
func (t *nodeTrack) Label() string { return t.path }

func (t *nodeTrack) Stop() error {
	t.once.Do(func() {
		t.err = unix.Close(t.fd)
	})
	return t.err
}
