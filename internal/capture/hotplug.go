package capture

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"mockinterview/internal/logging"
)

// DeviceEvent is a capture device appearing or disappearing.
type DeviceEvent struct {
	Action    string `json:"action"`
	Subsystem string `json:"subsystem"`
	Device    string `json:"device"`
}

// Available reports whether the event announces a new device.
func (e DeviceEvent) Available() bool {
	return e.Action == string(netlink.ADD)
}

// HotplugWatcher listens for udev netlink events on capture subsystems. It
// never acquires devices itself; a candidate retries by re-entering the screen.
type HotplugWatcher struct {
	logger  *slog.Logger
	handler func(DeviceEvent)

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// NewHotplugWatcher creates a watcher that reports events to handler.
func NewHotplugWatcher(logger *slog.Logger, handler func(DeviceEvent)) *HotplugWatcher {
	return &HotplugWatcher{
		logger:  logging.NewComponentLogger(logger, "hotplug"),
		handler: handler,
	}
}

// Start connects to the udev netlink socket. Connection failures are logged
// and leave the watcher stopped.
func (w *HotplugWatcher) Start(ctx context.Context) error {
	if w == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		logging.WarnWithContext(w.logger, "failed to connect to netlink socket; device hotplug not tracked", "hotplug_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "ensure the daemon may open netlink sockets"),
			logging.String(logging.FieldImpact, "candidates are not told when a camera reappears"),
		)
		return nil
	}

	w.conn = conn
	w.quit = make(chan struct{})
	w.running = true

	quit := w.quit
	go w.monitorLoop(ctx, conn, quit)

	w.logger.Info("hotplug watcher started", logging.String(logging.FieldEventType, "hotplug_started"))
	return nil
}

// Stop closes the netlink connection.
func (w *HotplugWatcher) Stop() {
	if w == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.quit != nil {
		close(w.quit)
		w.quit = nil
	}
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
	w.running = false

	w.logger.Info("hotplug watcher stopped", logging.String(logging.FieldEventType, "hotplug_stopped"))
}

// Running reports whether the watcher is connected.
func (w *HotplugWatcher) Running() bool {
	if w == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *HotplugWatcher) monitorLoop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, hotplugMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			w.handle(uevent)
		case err := <-errs:
			logging.WarnWithContext(w.logger, "netlink monitor error", "hotplug_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
			)
		}
	}
}

// hotplugMatcher matches add/remove events for cameras and capture PCMs.
func hotplugMatcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env:    map[string]string{"SUBSYSTEM": "video4linux"},
	})
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env:    map[string]string{"SUBSYSTEM": "sound"},
	})
	return rules
}

func (w *HotplugWatcher) handle(uevent netlink.UEvent) {
	event, ok := deviceEventFrom(uevent)
	if !ok {
		w.logger.Debug("ignoring uevent without capture node",
			logging.String("action", string(uevent.Action)),
			logging.String("kobj", uevent.KObj),
		)
		return
	}

	w.logger.Info("capture device changed",
		logging.String(logging.FieldEventType, "hotplug_"+event.Action),
		logging.String("device", event.Device),
		logging.String("subsystem", event.Subsystem),
	)
	if w.handler != nil {
		w.handler(event)
	}
}

// deviceEventFrom keeps video nodes and sound capture PCMs (pcmC*D*c).
func deviceEventFrom(uevent netlink.UEvent) (DeviceEvent, bool) {
	device := uevent.Env["DEVNAME"]
	if device == "" {
		devpath := uevent.Env["DEVPATH"]
		if devpath == "" {
			return DeviceEvent{}, false
		}
		device = path.Base(devpath)
	}
	if !strings.HasPrefix(device, "/dev/") {
		device = path.Join("/dev", device)
	}
	subsystem := uevent.Env["SUBSYSTEM"]
	base := path.Base(device)
	switch subsystem {
	case "video4linux":
		if !strings.HasPrefix(base, "video") {
			return DeviceEvent{}, false
		}
	case "sound":
		if !strings.HasPrefix(base, "pcmC") || !strings.HasSuffix(base, "c") {
			return DeviceEvent{}, false
		}
	default:
		return DeviceEvent{}, false
	}
	return DeviceEvent{Action: string(uevent.Action), Subsystem: subsystem, Device: device}, true
}
