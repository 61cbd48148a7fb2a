package hid

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleUevent = `DRIVER=hid-generic
HID_ID=0003:00000483:0000A3C5
HID_NAME=pcpanel
HID_PHYS=usb-0000:00:14.0-1/input0
HID_UNIQ=SERIAL123
MODALIAS=hid:b0003g0001v00000483p0000A3C5
`

func TestParseHidUevent(t *testing.T) {
	id, ok := parseHidUevent(sampleUevent)
	if !ok {
		t.Fatal("expected ok")
	}
	if id.Vendor != VendorID || id.Product != ProductID {
		t.Fatalf("got vendor=0x%04x product=0x%04x", id.Vendor, id.Product)
	}
	if id.Serial != "SERIAL123" {
		t.Fatalf("serial = %q", id.Serial)
	}
}

func TestParseHidUeventRejectsMissingField(t *testing.T) {
	if _, ok := parseHidUevent("DRIVER=hid-generic\n"); ok {
		t.Fatal("expected not ok without HID_ID")
	}
}

func TestHidIdMatches(t *testing.T) {
	id := hidId{Vendor: VendorID, Product: ProductID, Serial: "ABC"}
	if !id.matches("") {
		t.Error("empty serial constraint should match any device")
	}
	if !id.matches("ABC") {
		t.Error("matching serial should match")
	}
	if id.matches("XYZ") {
		t.Error("mismatched serial should not match")
	}
	other := hidId{Vendor: 0x1234, Product: ProductID}
	if other.matches("") {
		t.Error("wrong vendor should never match")
	}
}

func TestFindDevicePathScansSysfs(t *testing.T) {
	dir := t.TempDir()
	mustWriteUevent := func(name, content string) {
		p := filepath.Join(dir, name, "device")
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(p, "uevent"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWriteUevent("hidraw0", "HID_ID=0003:00001111:00002222\nHID_UNIQ=OTHER\n")
	mustWriteUevent("hidraw1", sampleUevent)

	orig := hidrawRoot
	hidrawRoot = dir
	defer func() { hidrawRoot = orig }()

	path, err := findDevicePath("")
	if err != nil {
		t.Fatalf("findDevicePath: %v", err)
	}
	if path != filepath.Join("/dev", "hidraw1") {
		t.Fatalf("path = %q", path)
	}
}

func TestFindDevicePathNoMatch(t *testing.T) {
	dir := t.TempDir()
	orig := hidrawRoot
	hidrawRoot = dir
	defer func() { hidrawRoot = orig }()

	if _, err := findDevicePath(""); err == nil {
		t.Fatal("expected error when no devices present")
	}
}
