package capture

import (
	"context"
	"errors"
	"time"
)

// Kind identifies the media carried by a track.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Track is one live media input held by a stream.
type Track interface {
	Kind() Kind
	Label() string
	Stop() error
}

// Stream is a combined audio+video capture handle.
type Stream struct {
	ID         string
	Tracks     []Track
	AcquiredAt time.Time
}

// Stop stops every track, returning the joined errors.
func (s *Stream) Stop() error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, track := range s.Tracks {
		if err := track.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Source opens capture streams from the environment.
type Source interface {
	Open(ctx context.Context) (*Stream, error)
}

// TrackInfo describes a held track without exposing it.
type TrackInfo struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
}

// Preview is the read-only view of the held stream.
type Preview struct {
	StreamID   string      `json:"streamId"`
	Tracks     []TrackInfo `json:"tracks"`
	AcquiredAt time.Time   `json:"acquiredAt"`
}

func previewOf(s *Stream) Preview {
	p := Preview{StreamID: s.ID, AcquiredAt: s.AcquiredAt}
	for _, track := range s.Tracks {
		p.Tracks = append(p.Tracks, TrackInfo{Kind: track.Kind(), Label: track.Label()})
	}
	return p
}
