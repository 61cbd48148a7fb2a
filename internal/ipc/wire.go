// Package ipc implements the control-plane wire protocol: a length-prefixed
// JSON request/response exchange over a Unix stream socket (spec.md §6.2).
package ipc

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// MaxMessageSize is the largest payload this protocol accepts on either side
// of the connection, header excluded.
const MaxMessageSize = 1 << 20 // 1 MiB

// writeFrame writes a 4-byte little-endian length prefix followed by
// payload to w.
func writeFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxMessageSize {
		return fmt.Errorf("ipc: payload of %d bytes exceeds max message size %d", len(payload), MaxMessageSize)
	}
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("ipc: write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("ipc: write frame payload: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed payload from r, rejecting any frame
// that declares a size over MaxMessageSize before reading its body.
func readFrame(r *bufio.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(header[:])
	if size > MaxMessageSize {
		return nil, fmt.Errorf("ipc: frame declares %d bytes, exceeds max message size %d", size, MaxMessageSize)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("ipc: read frame payload: %w", err)
	}
	return payload, nil
}
