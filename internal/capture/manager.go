package capture

import (
	"context"
	"log/slog"
	"sync"

	"mockinterview/internal/logging"
	"mockinterview/internal/services"
)

// Manager holds at most one live stream.
type Manager struct {
	source Source
	logger *slog.Logger

	mu     sync.Mutex
	stream *Stream
	gen    uint64
}

// NewManager creates a manager that acquires from source.
func NewManager(source Source, logger *slog.Logger) *Manager {
	if source == nil {
		source = NoneSource{}
	}
	return &Manager{
		source: source,
		logger: logging.NewComponentLogger(logger, "capture"),
	}
}

// Token is a release generation. An acquisition started under a token is
// discarded if Release runs before the stream is stored.
type Token uint64

// Reserve returns the current release generation. Callers that acquire on
// another goroutine take the token first so a Release issued in between
// still applies.
func (m *Manager) Reserve() Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Token(m.gen)
}

// Acquire opens a stream and makes it available as the preview. A stream that
// is already held is returned unchanged. Failures wrap services.ErrDeviceUnavailable.
func (m *Manager) Acquire(ctx context.Context) (Preview, error) {
	return m.AcquireReserved(ctx, m.Reserve())
}

// AcquireReserved is Acquire under a token from Reserve.
func (m *Manager) AcquireReserved(ctx context.Context, token Token) (Preview, error) {
	gen := uint64(token)
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return Preview{}, services.Wrap(services.ErrDeviceUnavailable, "capture", "acquire", "released before acquisition", nil)
	}
	if m.stream != nil {
		p := previewOf(m.stream)
		m.mu.Unlock()
		return p, nil
	}
	m.mu.Unlock()

	stream, err := m.source.Open(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return Preview{}, services.Wrap(services.ErrDeviceUnavailable, "capture", "acquire", "open capture stream", err)
	}
	if stream == nil {
		return Preview{}, services.Wrap(services.ErrDeviceUnavailable, "capture", "acquire", "source returned no stream", nil)
	}

	m.mu.Lock()
	if gen != m.gen || m.stream != nil {
		// Released (or raced by another acquire) while the source was opening.
		m.mu.Unlock()
		if stopErr := stream.Stop(); stopErr != nil {
			m.logger.Debug("stop superseded stream failed", logging.Error(stopErr))
		}
		return Preview{}, services.Wrap(services.ErrDeviceUnavailable, "capture", "acquire", "released during acquisition", nil)
	}
	m.stream = stream
	preview := previewOf(stream)
	m.mu.Unlock()

	m.logger.Info("capture stream acquired",
		logging.String("stream_id", stream.ID),
		logging.Int("tracks", len(stream.Tracks)),
	)
	return preview, nil
}

// Release stops the held stream. Idempotent.
func (m *Manager) Release() error {
	m.mu.Lock()
	m.gen++
	stream := m.stream
	m.stream = nil
	m.mu.Unlock()

	if stream == nil {
		return nil
	}
	if err := stream.Stop(); err != nil {
		logging.WarnWithContext(m.logger, "capture track stop failed", "capture_release_failed",
			logging.String("stream_id", stream.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the device is not held by another process"),
			logging.String(logging.FieldImpact, "device may stay busy until the process exits"),
		)
		return err
	}
	m.logger.Info("capture stream released", logging.String("stream_id", stream.ID))
	return nil
}

// Preview returns the held stream's description.
func (m *Manager) Preview() (Preview, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream == nil {
		return Preview{}, false
	}
	return previewOf(m.stream), true
}

// Holding reports whether a stream is currently held.
func (m *Manager) Holding() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stream != nil
}
