package hid

import (
	"bytes"
	"testing"
)

func packet(fields ...string) []byte {
	var buf bytes.Buffer
	for _, f := range fields {
		buf.WriteString(f)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func TestRelevantHotplugAdd(t *testing.T) {
	msg := packet(
		"add@/devices/virtual/hidraw/hidraw3",
		"ACTION=add",
		"SUBSYSTEM=hidraw",
		"HID_ID=0003:00000483:0000A3C5",
	)
	kv := parseUeventPacket(msg)
	ev, ok := relevantHotplug(kv)
	if !ok || ev != Added {
		t.Fatalf("ev=%v ok=%v", ev, ok)
	}
}

func TestRelevantHotplugRemove(t *testing.T) {
	msg := packet(
		"remove@/devices/virtual/hidraw/hidraw3",
		"ACTION=remove",
		"SUBSYSTEM=hidraw",
		"HID_ID=0003:00000483:0000A3C5",
	)
	kv := parseUeventPacket(msg)
	ev, ok := relevantHotplug(kv)
	if !ok || ev != Removed {
		t.Fatalf("ev=%v ok=%v", ev, ok)
	}
}

func TestRelevantHotplugIgnoresOtherSubsystems(t *testing.T) {
	msg := packet("add@/devices/virtual/input/input3", "ACTION=add", "SUBSYSTEM=input")
	if _, ok := relevantHotplug(parseUeventPacket(msg)); ok {
		t.Fatal("expected non-hidraw subsystem to be ignored")
	}
}

func TestRelevantHotplugIgnoresOtherVendors(t *testing.T) {
	msg := packet("add@/devices/virtual/hidraw/hidraw9", "ACTION=add", "SUBSYSTEM=hidraw", "HID_ID=0003:00001111:00002222")
	if _, ok := relevantHotplug(parseUeventPacket(msg)); ok {
		t.Fatal("expected other vendor/product to be ignored")
	}
}
