package capture

import (
	"strings"

	"mockinterview/internal/config"
)

// NewSource builds the source selected by the capture backend setting.
func NewSource(cfg *config.Config) Source {
	if cfg == nil {
		return NoneSource{}
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Capture.Backend)) {
	case config.CaptureDevices:
		return DeviceNodeSource{
			VideoPattern: cfg.Capture.VideoPattern,
			AudioPattern: cfg.Capture.AudioPattern,
		}
	default:
		return NoneSource{}
	}
}
