package capture

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"mockinterview/internal/services"
)

// StaticSource fabricates streams in process. Setting Fail makes every open
// fail with the given cause.
type StaticSource struct {
	Fail error

	mu      sync.Mutex
	opened  int
	tracks  []*staticTrack
	counter atomic.Uint64
}

// Open returns a stream with one video and one audio track.
func (s *StaticSource) Open(ctx context.Context) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, services.Wrap(services.ErrDeviceUnavailable, "capture", "open", "static source", s.Fail)
	}
	s.opened++
	n := s.counter.Add(1)
	video := &staticTrack{kind: KindVideo, label: "static camera"}
	audio := &staticTrack{kind: KindAudio, label: "static microphone"}
	s.tracks = append(s.tracks, video, audio)
	return &Stream{
		ID:         fmt.Sprintf("static-%d", n),
		Tracks:     []Track{video, audio},
		AcquiredAt: time.Now().UTC(),
	}, nil
}

// Opened reports how many streams were handed out.
func (s *StaticSource) Opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// LiveTracks reports how many handed-out tracks have not been stopped.
func (s *StaticSource) LiveTracks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := 0
	for _, track := range s.tracks {
		if !track.stopped.Load() {
			live++
		}
	}
	return live
}

type staticTrack struct {
	kind    Kind
	label   string
	stopped atomic.Bool
}

func (t *staticTrack) Kind() Kind    { return t.kind }
func (t *staticTrack) Label() string { return t.label }
func (t *staticTrack) Stop() error {
	t.stopped.Store(true)
	return nil
}

// NoneSource is used when capture is disabled.
type NoneSource struct{}

// Open always fails with services.ErrDeviceUnavailable.
func (NoneSource) Open(context.Context) (*Stream, error) {
	return nil, services.Wrap(services.ErrDeviceUnavailable, "capture", "open", "capture disabled", nil)
}
