package engine

import (
	"context"
	"log/slog"
	"os/exec"

	"pcpaneld/internal/audio"
	"pcpaneld/internal/config"
	"pcpaneld/internal/focus"
	"pcpaneld/internal/hid"
	"pcpaneld/internal/model"
)

// Loop is the single-owner daemon loop: it owns a State and cooperatively
// multiplexes every input source onto Reduce, then carries out the commands
// Reduce returns (spec §4.7, §5).
type Loop struct {
	logger *slog.Logger

	hidSub   *hid.Subsystem
	audioSub *audio.Subsystem
	tracker  *focus.Tracker
	store    *config.Store

	Requests chan Request

	state *State
}

// NewLoop wires the four subsystems and the control-plane request channel
// into a Loop ready to Run. The initial Config comes from store.Current().
func NewLoop(logger *slog.Logger, hidSub *hid.Subsystem, audioSub *audio.Subsystem, tracker *focus.Tracker, store *config.Store) (*Loop, error) {
	cfg, err := store.Current().ToModel()
	if err != nil {
		return nil, err
	}
	return &Loop{
		logger:   logger,
		hidSub:   hidSub,
		audioSub: audioSub,
		tracker:  tracker,
		store:    store,
		Requests: make(chan Request, 8),
		state:    NewState(cfg),
	}, nil
}

// Run is the single suspension point (spec §5): exactly one branch is
// processed to completion per iteration before the next receive.
func (l *Loop) Run(ctx context.Context) error {
	l.pushLeds()
	for {
		var ev Event
		select {
		case <-ctx.Done():
			l.logger.Info("engine: shutting down")
			return nil

		case pos := <-l.hidSub.Positions:
			ev = PositionsEvent{Positions: pos}

		case btn := <-l.hidSub.Buttons:
			if btn.ID < 0 || btn.ID > 4 {
				continue
			}
			ev = ButtonEvent{Id: model.ControlId{Kind: model.Knob, Index: btn.ID}, Pressed: btn.Pressed}

		case <-l.hidSub.Connected:
			ev = HidConnectionEvent{Connected: true}

		case <-l.hidSub.Disconnected:
			ev = HidConnectionEvent{Connected: false}

		case n := <-l.audioSub.Notifications:
			ev = AudioNotificationEvent{Notification: n}

		case win := <-l.tracker.Updates:
			ev = FocusEvent{Window: win}

		case fc := <-l.store.Updates:
			m, err := fc.ToModel()
			if err != nil {
				l.logger.Error("engine: reloaded config failed to convert, ignoring", "error", err)
				continue
			}
			ev = ConfigReloadEvent{Config: m}

		case req := <-l.Requests:
			ev = RequestEvent{Request: req}
		}

		cmds := Reduce(l.state, ev)
		if shutdown := l.execute(cmds); shutdown {
			l.logger.Info("engine: shutdown requested over control plane")
			return nil
		}
	}
}

// execute carries out cmds in order, returning true if a ShutdownCommand was
// among them.
func (l *Loop) execute(cmds []Command) bool {
	shutdown := false
	for _, c := range cmds {
		switch cmd := c.(type) {
		case AudioCommand:
			select {
			case l.audioSub.Commands <- cmd.Cmd:
			default:
				l.logger.Warn("engine: audio command queue full, dropping", "kind", cmd.Cmd.Kind)
			}
		case LedCommand:
			for _, report := range cmd.Reports {
				select {
				case l.hidSub.Commands <- report:
				default:
					l.logger.Warn("engine: hid command queue full, dropping led report")
				}
			}
		case ExecCommand:
			l.runExec(cmd.Shell)
		case MediaCommandOut:
			l.logger.Debug("engine: media command emitted, no player selected", "command", cmd.Cmd)
		case PersistConfigCommand:
			fc := config.FromModel(cmd.Config)
			cur := l.store.Current()
			fc.Logging, fc.IPC = cur.Logging, cur.IPC
			if err := l.store.Persist(fc); err != nil {
				l.logger.Error("engine: persist config failed", "error", err)
			}
		case ReloadConfigCommand:
			fc, err := l.store.ReloadSync()
			if err != nil {
				l.logger.Error("engine: explicit reload failed", "error", err)
				continue
			}
			m, err := fc.ToModel()
			if err != nil {
				l.logger.Error("engine: reloaded config failed to convert, ignoring", "error", err)
				continue
			}
			l.execute(Reduce(l.state, ConfigReloadEvent{Config: m}))
		case ShutdownCommand:
			shutdown = true
		}
	}
	return shutdown
}

func (l *Loop) runExec(shell string) {
	cmd := exec.Command("sh", "-c", shell)
	go func() {
		if err := cmd.Run(); err != nil {
			l.logger.Warn("engine: exec command failed", "shell", shell, "error", err)
		}
	}()
}

func (l *Loop) pushLeds() {
	for _, report := range hid.BuildLedReports(l.state.Config.Leds) {
		select {
		case l.hidSub.Commands <- report:
		default:
		}
	}
}
