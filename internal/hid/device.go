package hid

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sys/unix"

	"pcpaneld/internal/apperr"
	"pcpaneld/internal/model"
)

const (
	readTimeout   = 100 * time.Millisecond
	initDrainTime = 500 * time.Millisecond
	hotplugWait   = 5 * time.Second

	buttonsDepth  = 32
	commandsDepth = 64
)

// Subsystem owns the hidraw device: the outer reconnection loop, the 100 ms
// read loop, and the outgoing command queue. It runs on its own OS thread
// (spec §5) because hidraw reads are blocking and not otherwise cancellable.
type Subsystem struct {
	serial string
	logger *slog.Logger

	// Positions is latest-wins, depth 1: only the most recent 9-element
	// snapshot matters to the engine.
	Positions chan [9]model.HwValue
	// Buttons is reliable: bounded but never dropped.
	Buttons chan InputReport
	// Commands carries outgoing 64-byte reports (without the Report-ID 0
	// prefix; WriteFrame applies it at write time).
	Commands chan []byte
	// Connected fires (latest-wins, depth 1) each time a session starts, so
	// callers know to push the current LED state.
	Connected chan struct{}
	// Disconnected fires (latest-wins, depth 1) each time a session ends.
	Disconnected chan struct{}
}

func NewSubsystem(serial string, logger *slog.Logger) *Subsystem {
	return &Subsystem{
		serial:       serial,
		logger:       logger,
		Positions:    make(chan [9]model.HwValue, 1),
		Buttons:      make(chan InputReport, buttonsDepth),
		Commands:     make(chan []byte, commandsDepth),
		Connected:    make(chan struct{}, 1),
		Disconnected: make(chan struct{}, 1),
	}
}

// Run executes the outer reconnection loop until ctx is canceled. hotplug
// delivers Added/Removed tokens from a HotplugMonitor run alongside it.
func (s *Subsystem) Run(ctx context.Context, hotplug <-chan HotplugEvent) error {
	var snapshot [9]model.HwValue

	for ctx.Err() == nil {
		path, err := findDevicePath(s.serial)
		if err != nil {
			s.logger.Warn("hid: device not found, waiting for hotplug or timeout", "serial", s.serial, "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-hotplug:
			case <-time.After(hotplugWait):
			}
			continue
		}

		if err := s.runSession(ctx, path, &snapshot); err != nil {
			s.logger.Warn("hid: session ended", "path", path, "error", err)
		}

		snapshot = [9]model.HwValue{}
		s.publishPositions(snapshot)
		select {
		case s.Disconnected <- struct{}{}:
		default:
		}
	}
	return nil
}

func (s *Subsystem) runSession(ctx context.Context, path string, snapshot *[9]model.HwValue) error {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return apperr.DeviceIoFailure{Serial: s.serial, Op: "open", Err: err}
	}
	defer unix.Close(fd)

	if _, err := unix.Write(fd, WriteFrame(InitReport())); err != nil {
		return apperr.DeviceIoFailure{Serial: s.serial, Op: "write-init", Err: err}
	}
	s.drainStale(fd)

	select {
	case s.Connected <- struct{}{}:
	default:
	}

	buf := make([]byte, ReportSize)
	for {
		if ctx.Err() != nil {
			s.sendAllOffBestEffort(fd)
			return nil
		}

		ready, err := pollReadable(fd, readTimeout)
		if err != nil {
			return apperr.DeviceIoFailure{Serial: s.serial, Op: "poll", Err: err}
		}
		if ready {
			n, err := unix.Read(fd, buf)
			if err != nil {
				return apperr.DeviceIoFailure{Serial: s.serial, Op: "read", Err: err}
			}
			rep, err := ParseInputReport(buf[:n])
			if err != nil {
				s.logger.Debug("hid: dropping malformed report", "error", err)
			} else {
				s.handleReport(ctx, rep, snapshot)
			}
		}

		s.drainCommands(fd)
	}
}

func (s *Subsystem) handleReport(ctx context.Context, rep InputReport, snapshot *[9]model.HwValue) {
	switch rep.Kind {
	case InputPosition:
		id, ok := rep.ControlId()
		if !ok {
			return
		}
		snapshot[positionIndex(id)] = rep.Value
		s.publishPositions(*snapshot)
	case InputButton:
		select {
		case s.Buttons <- rep:
		case <-ctx.Done():
		}
	}
}

// positionIndex maps a ControlId to its slot in the 9-element snapshot:
// knobs 0..4, sliders 5..8 (spec §6.1).
func positionIndex(id model.ControlId) int {
	if id.Kind == model.Slider {
		return 5 + id.Index
	}
	return id.Index
}

func (s *Subsystem) publishPositions(snap [9]model.HwValue) {
	select {
	case s.Positions <- snap:
		return
	default:
	}
	select {
	case <-s.Positions:
	default:
	}
	select {
	case s.Positions <- snap:
	default:
	}
}

func (s *Subsystem) drainCommands(fd int) {
	for {
		select {
		case cmd := <-s.Commands:
			if _, err := unix.Write(fd, WriteFrame(cmd)); err != nil {
				s.logger.Warn("hid: command write failed", "error", err)
				return
			}
		default:
			return
		}
	}
}

func (s *Subsystem) drainStale(fd int) {
	deadline := time.Now().Add(initDrainTime)
	buf := make([]byte, ReportSize)
	for time.Now().Before(deadline) {
		ready, err := pollReadable(fd, 20*time.Millisecond)
		if err != nil || !ready {
			return
		}
		if _, err := unix.Read(fd, buf); err != nil {
			return
		}
	}
}

func (s *Subsystem) sendAllOffBestEffort(fd int) {
	for _, report := range AllOffReports() {
		if _, err := unix.Write(fd, WriteFrame(report)); err != nil {
			s.logger.Warn("hid: best-effort led-off failed", "error", err)
			return
		}
	}
}

// pollReadable blocks up to timeout for fd to become readable.
func pollReadable(fd int, timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, err
	}
	return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
}
