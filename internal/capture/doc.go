// Package capture owns the camera and microphone stream of an interview.
//
// A Manager acquires a combined audio+video Stream from a Source and exposes it
// as the preview. Acquisition failures are tagged with
// services.ErrDeviceUnavailable so callers can continue in a degraded mode.
// Release stops every track and is safe to call any number of times, including
// while an acquisition is still in flight.
//
// Sources:
//   - DeviceNodeSource opens Linux capture device nodes read-only.
//   - StaticSource is an in-process stand-in for the simulator and tests.
//   - NoneSource always reports the devices as unavailable.
//
// HotplugWatcher listens for udev add/remove events on the video4linux and
// sound subsystems so operators learn when a device reappears.
package capture
