package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client is a thin synchronous control-plane client: one request in, one
// response out, per call. It holds a single connection across calls.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to the daemon's control-plane socket.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("ipc: connect to %s: %w", path, err)
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// call sends one wireRequest and returns the decoded wireResponse.
func (c *Client) call(req wireRequest) (wireResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return wireResponse{}, fmt.Errorf("ipc: encode request: %w", err)
	}
	if err := writeFrame(c.conn, payload); err != nil {
		return wireResponse{}, err
	}
	out, err := readFrame(c.r)
	if err != nil {
		return wireResponse{}, fmt.Errorf("ipc: read response: %w", err)
	}
	var resp wireResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return wireResponse{}, fmt.Errorf("ipc: decode response: %w", err)
	}
	if resp.Type == "error" {
		return resp, fmt.Errorf("daemon error: %s", resp.Message)
	}
	return resp, nil
}

func (c *Client) GetStatus() (wireResponse, error) {
	return c.call(wireRequest{Type: "get_status"})
}

func (c *Client) ListApps() (wireResponse, error) {
	return c.call(wireRequest{Type: "list_apps"})
}

func (c *Client) ListDevices() (wireResponse, error) {
	return c.call(wireRequest{Type: "list_devices"})
}

func (c *Client) ListOutputs() (wireResponse, error) {
	return c.call(wireRequest{Type: "list_outputs"})
}

func (c *Client) ListInputs() (wireResponse, error) {
	return c.call(wireRequest{Type: "list_inputs"})
}

func (c *Client) GetConfig() (wireResponse, error) {
	return c.call(wireRequest{Type: "get_config"})
}

func (c *Client) ReloadConfig() (wireResponse, error) {
	return c.call(wireRequest{Type: "reload_config"})
}

func (c *Client) Shutdown() (wireResponse, error) {
	return c.call(wireRequest{Type: "shutdown"})
}

// AssignDial assigns control (e.g. "knob2") a Volume(target) dial action.
// target is one of default_output, default_input, focused_app, app; binary/
// name/flatpakId are only meaningful when target == "app".
func (c *Client) AssignDial(control, target, binary, name, flatpakId string) (wireResponse, error) {
	return c.call(wireRequest{
		Type:    "assign_dial",
		Control: control,
		Dial:    &wireTarget{Kind: target, Binary: binary, Name: name, FlatpakId: flatpakId},
	})
}

// AssignButtonMute assigns control a Mute(target) button action.
func (c *Client) AssignButtonMute(control, target, binary, name, flatpakId string) (wireResponse, error) {
	return c.call(wireRequest{
		Type:    "assign_button",
		Control: control,
		Button:  &wireButton{Action: "mute", Target: &wireTarget{Kind: target, Binary: binary, Name: name, FlatpakId: flatpakId}},
	})
}

// AssignButtonMedia assigns control a Media(cmd) button action.
func (c *Client) AssignButtonMedia(control, cmd string) (wireResponse, error) {
	return c.call(wireRequest{
		Type:    "assign_button",
		Control: control,
		Button:  &wireButton{Action: "media", Media: cmd},
	})
}

// AssignButtonExec assigns control an Exec(shell) button action.
func (c *Client) AssignButtonExec(control, shell string) (wireResponse, error) {
	return c.call(wireRequest{
		Type:    "assign_button",
		Control: control,
		Button:  &wireButton{Action: "exec", Command: shell},
	})
}

func (c *Client) Unassign(control string) (wireResponse, error) {
	return c.call(wireRequest{Type: "unassign", Control: control})
}
