package ipc

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"type":"get_status"}`)
	if err := writeFrame(&buf, payload); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}

	got, err := readFrame(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
}

func TestWriteFrameRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	payload := make([]byte, MaxMessageSize+1)
	if err := writeFrame(&buf, payload); err == nil {
		t.Fatal("expected an error for an oversized payload")
	}
}

func TestReadFrameRejectsOversizedHeader(t *testing.T) {
	var buf bytes.Buffer
	// Hand-craft a header declaring more than MaxMessageSize without
	// actually writing that much body.
	if err := writeFrame(&buf, make([]byte, 8)); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	raw[0], raw[1], raw[2], raw[3] = 0xff, 0xff, 0xff, 0x7f // huge declared size

	_, err := readFrame(bufio.NewReader(bytes.NewReader(raw)))
	if err == nil || !strings.Contains(err.Error(), "exceeds max message size") {
		t.Fatalf("err = %v, want an 'exceeds max message size' error", err)
	}
}
