package hid

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"pcpaneld/internal/apperr"
)

// hidrawRoot is the sysfs root scanned for candidate devices. Overridden in
// tests so the scan never touches the real /sys.
var hidrawRoot = "/sys/class/hidraw"

// ueventKV parses a uevent-format blob ("KEY=value" lines, or NUL-separated
// for netlink messages already split by the caller) into a map.
func ueventKV(lines []string) map[string]string {
	m := make(map[string]string, len(lines))
	for _, line := range lines {
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}

func parseUeventFile(content string) map[string]string {
	return ueventKV(strings.Split(strings.TrimRight(content, "\n"), "\n"))
}

// hidId is the vendor/product/serial triple recovered from a uevent HID_ID
// field, formatted "bus:vendor:product" in hex, or from HID_UNIQ for serial.
type hidId struct {
	Vendor  uint16
	Product uint16
	Serial  string
}

func parseHidUevent(content string) (hidId, bool) {
	return hidIdFromKV(parseUeventFile(content))
}

// hidIdFromKV recovers the vendor/product/serial triple from an already
// key=value-parsed uevent, as produced by either a sysfs uevent file or a
// netlink uevent packet.
func hidIdFromKV(kv map[string]string) (hidId, bool) {
	raw, ok := kv["HID_ID"]
	if !ok {
		return hidId{}, false
	}
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return hidId{}, false
	}
	vendor, err1 := strconv.ParseUint(parts[1], 16, 16)
	product, err2 := strconv.ParseUint(parts[2], 16, 16)
	if err1 != nil || err2 != nil {
		return hidId{}, false
	}
	return hidId{Vendor: uint16(vendor), Product: uint16(product), Serial: kv["HID_UNIQ"]}, true
}

// matches reports whether id satisfies the configured vendor/product and an
// optional (empty-means-any) serial constraint.
func (id hidId) matches(wantSerial string) bool {
	if id.Vendor != VendorID || id.Product != ProductID {
		return false
	}
	if wantSerial == "" {
		return true
	}
	return id.Serial == wantSerial
}

// findDevicePath scans /sys/class/hidraw/*/device/uevent for a match and
// returns the corresponding /dev/hidraw{N} path, deterministically picking
// the first match in lexical name order when more than one device qualifies.
func findDevicePath(wantSerial string) (string, error) {
	entries, err := os.ReadDir(hidrawRoot)
	if err != nil {
		return "", fmt.Errorf("hid: read %s: %w", hidrawRoot, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		ueventPath := filepath.Join(hidrawRoot, name, "device", "uevent")
		b, err := os.ReadFile(ueventPath)
		if err != nil {
			continue
		}
		id, ok := parseHidUevent(string(b))
		if !ok || !id.matches(wantSerial) {
			continue
		}
		return filepath.Join("/dev", name), nil
	}
	return "", apperr.DeviceNotFound{Serial: wantSerial}
}
