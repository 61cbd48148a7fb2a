package hid

import (
	"bytes"
	"context"
	"log/slog"

	"golang.org/x/sys/unix"
)

// HotplugEvent is the minimal signal the engine needs from the hotplug
// monitor: something changed, go re-scan.
type HotplugEvent int

const (
	Added HotplugEvent = iota
	Removed
)

// hotplugDepth is the bounded drop-newest channel depth for hotplug events
// (spec §5 channel bounds table).
const hotplugDepth = 4

// parseUeventPacket splits a NETLINK_KOBJECT_UEVENT payload (NUL-separated
// "KEY=value" fields, first line is the free-form subject) into a map.
func parseUeventPacket(msg []byte) map[string]string {
	fields := bytes.Split(msg, []byte{0})
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if i := bytes.IndexByte(f, '='); i >= 0 {
			lines = append(lines, string(f))
		}
	}
	return ueventKV(lines)
}

// relevantHotplug reports whether a parsed uevent concerns our device and,
// if so, which direction.
func relevantHotplug(kv map[string]string) (HotplugEvent, bool) {
	if kv["SUBSYSTEM"] != "hidraw" {
		return 0, false
	}
	id, ok := hidIdFromKV(kv)
	if !ok || id.Vendor != VendorID || id.Product != ProductID {
		return 0, false
	}
	switch kv["ACTION"] {
	case "add":
		return Added, true
	case "remove":
		return Removed, true
	default:
		return 0, false
	}
}

// HotplugMonitor listens on a NETLINK_KOBJECT_UEVENT socket and forwards
// Added/Removed tokens for our vendor/product on a bounded, drop-newest
// channel. Runs on its own OS thread because the netlink read is blocking.
type HotplugMonitor struct {
	Events chan HotplugEvent
	logger *slog.Logger
}

func NewHotplugMonitor(logger *slog.Logger) *HotplugMonitor {
	return &HotplugMonitor{
		Events: make(chan HotplugEvent, hotplugDepth),
		logger: logger,
	}
}

// Run blocks until ctx is canceled or the socket fails unrecoverably.
func (m *HotplugMonitor) Run(ctx context.Context) error {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	addr := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: 1}
	if err := unix.Bind(fd, addr); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		unix.Close(fd)
	}()

	buf := make([]byte, 4096)
	for {
		n, _, err := unix.Recvfrom(fd, buf, 0)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		kv := parseUeventPacket(buf[:n])
		ev, ok := relevantHotplug(kv)
		if !ok {
			continue
		}
		select {
		case m.Events <- ev:
		default:
			m.logger.Debug("hid: hotplug channel full, dropping event", "event", ev)
		}
	}
}
