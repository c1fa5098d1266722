package preflight

import (
	"fmt"
	"strings"

	"mockinterview/internal/config"
	"mockinterview/internal/deps"
)

// CaptureProbe reports the capture devices currently visible to the host.
type CaptureProbe struct {
	Backend string
	Video   []string
	Audio   []string
}

// ProbeCapture matches the configured device patterns without opening them.
func ProbeCapture(cfg *config.Config) CaptureProbe {
	if cfg == nil {
		return CaptureProbe{}
	}
	probe := CaptureProbe{Backend: strings.ToLower(strings.TrimSpace(cfg.Capture.Backend))}
	if probe.Backend != config.CaptureDevices {
		return probe
	}
	statuses := deps.Check([]deps.Requirement{
		{Name: "video", Pattern: cfg.Capture.VideoPattern},
		{Name: "audio", Pattern: cfg.Capture.AudioPattern},
	})
	probe.Video = statuses[0].Matches
	probe.Audio = statuses[1].Matches
	return probe
}

// Ready reports whether a session could acquire both tracks.
func (p CaptureProbe) Ready() bool {
	if p.Backend != config.CaptureDevices {
		return true
	}
	return len(p.Video) > 0 && len(p.Audio) > 0
}

// Detail renders a display-friendly summary for status UIs.
func (p CaptureProbe) Detail() string {
	if p.Backend != config.CaptureDevices {
		return "Capture disabled"
	}
	if !p.Ready() {
		return fmt.Sprintf("Devices missing (%d video, %d audio)", len(p.Video), len(p.Audio))
	}
	return fmt.Sprintf("%s + %s", p.Video[0], p.Audio[0])
}
