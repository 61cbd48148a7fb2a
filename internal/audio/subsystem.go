// Package audio owns the connection to the PulseAudio-compatible sound
// server: tick-driven snapshot polling with change detection and a bounded
// command queue, all on a single mainloop-owning goroutine (spec §4.4).
package audio

import (
	"context"
	"log/slog"
	"time"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"

	"pcpaneld/internal/apperr"
	"pcpaneld/internal/model"
)

const (
	coalesceTick    = 20 * time.Millisecond
	backoffInitial  = 1 * time.Second
	backoffMax      = 4 * time.Second
	stableSession   = 30 * time.Second
	commandsDepth   = 32
	notifyDepth     = 32
)

// NotificationKind is the closed set of events the subsystem emits.
type NotificationKind int

const (
	Connected NotificationKind = iota
	Disconnected
	StateSnapshot
)

// Notification carries one emitted event; Snapshot is only set when Kind ==
// StateSnapshot.
type Notification struct {
	Kind     NotificationKind
	Snapshot model.AudioSnapshot
}

// rawClient is the subset of *pulse.Client the subsystem depends on,
// narrowed to an interface so tests can substitute a fake (the same shape
// as the ambient stack's CamillaDSPClientInterface pattern for mockable
// network clients).
type rawClient interface {
	RawRequest(args pulseproto.RequestArgs, reply pulseproto.Reply) error
	Close()
}

// Subsystem owns the mainloop connection, exponential reconnect backoff, and
// the coalesced snapshot/command plumbing.
type Subsystem struct {
	logger *slog.Logger

	Commands      chan Command
	Notifications chan Notification

	// channelCounts remembers each entity's last-observed channel count so
	// SetVolume commands preserve channel layout instead of collapsing
	// stereo streams to mono.
	channelCounts map[channelKey]int

	// dial lets tests substitute a fake connector; defaults to connecting
	// to the real sound server via pulse.NewClient.
	dial func() (rawClient, error)
}

type channelKey struct {
	kind  TargetKind
	index uint32
}

func NewSubsystem(logger *slog.Logger) *Subsystem {
	return &Subsystem{
		logger:        logger,
		Commands:      make(chan Command, commandsDepth),
		Notifications: make(chan Notification, notifyDepth),
		channelCounts: make(map[channelKey]int),
		dial: func() (rawClient, error) {
			return pulse.NewClient(pulse.ClientApplicationName("pcpaneld"))
		},
	}
}

// Run executes the reconnect-with-backoff outer loop until ctx is canceled.
func (s *Subsystem) Run(ctx context.Context) error {
	backoff := backoffInitial
	for ctx.Err() == nil {
		start := time.Now()
		err := s.runSession(ctx)
		s.notify(ctx, Notification{Kind: Disconnected})
		if err != nil {
			s.logger.Warn("audio: session ended", "error", err)
		}
		if ctx.Err() != nil {
			return nil
		}
		if time.Since(start) > stableSession {
			backoff = backoffInitial
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > backoffMax {
			backoff = backoffMax
		}
	}
	return nil
}

func (s *Subsystem) runSession(ctx context.Context) error {
	client, err := s.dial()
	if err != nil {
		return apperr.AudioRequestFailed{Op: "connect", Err: err}
	}
	defer client.Close()

	sub := pulseproto.Subscribe{
		Mask: pulseproto.SubscriptionMaskSink | pulseproto.SubscriptionMaskSource |
			pulseproto.SubscriptionMaskSinkInput | pulseproto.SubscriptionMaskServer,
	}
	if err := client.RawRequest(&sub, nil); err != nil {
		return apperr.AudioRequestFailed{Op: "subscribe", Err: err}
	}

	s.notify(ctx, Notification{Kind: Connected})

	// The subscribe mask asks the server to push change events, but the
	// rawClient interface has no slot for registering an event callback (see
	// DESIGN.md), so coalescing is done here by polling at the tick rate and
	// publishing only on actual change: at most one notification per tick.
	ticker := time.NewTicker(coalesceTick)
	defer ticker.Stop()

	var last model.AudioSnapshot
	haveSnapshot := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-s.Commands:
			if err := s.execute(client, cmd); err != nil {
				s.logger.Warn("audio: command failed", "kind", cmd.Kind, "error", err)
			}
		case <-ticker.C:
			snap, err := s.querySnapshot(client)
			if err != nil {
				s.logger.Warn("audio: snapshot query failed", "error", err)
				return apperr.AudioRequestFailed{Op: "snapshot", Err: err}
			}
			if haveSnapshot && snapshotsEqual(last, snap) {
				continue
			}
			last, haveSnapshot = snap, true
			s.notify(ctx, Notification{Kind: StateSnapshot, Snapshot: snap})
		}
	}
}

// notify blocks until n is delivered: the audio mainloop is one of the OS
// threads that uses synchronous sends into the cooperative zone (spec §5),
// so a notification is never dropped, only delayed.
func (s *Subsystem) notify(ctx context.Context, n Notification) {
	select {
	case s.Notifications <- n:
	case <-ctx.Done():
	}
}

func (s *Subsystem) querySnapshot(client rawClient) (model.AudioSnapshot, error) {
	var server pulseproto.GetServerInfoReply
	if err := client.RawRequest(&pulseproto.GetServerInfo{}, &server); err != nil {
		return model.AudioSnapshot{}, err
	}

	var sinkInfos pulseproto.GetSinkInfoListReply
	if err := client.RawRequest(&pulseproto.GetSinkInfoList{}, &sinkInfos); err != nil {
		return model.AudioSnapshot{}, err
	}
	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return model.AudioSnapshot{}, err
	}
	var inputInfos pulseproto.GetSinkInputInfoListReply
	if err := client.RawRequest(&pulseproto.GetSinkInputInfoList{}, &inputInfos); err != nil {
		return model.AudioSnapshot{}, err
	}

	snap := model.AudioSnapshot{
		DefaultSinkName:   server.DefaultSinkName,
		DefaultSourceName: server.DefaultSourceName,
	}
	for _, si := range sinkInfos {
		if si == nil {
			continue
		}
		s.channelCounts[channelKey{TargetSink, si.SinkIndex}] = len(si.ChannelVolume)
		snap.Sinks = append(snap.Sinks, model.Sink{
			Index:  si.SinkIndex,
			Name:   si.SinkName,
			Volume: averageVolume(si.ChannelVolume),
			Muted:  si.Mute,
		})
	}
	for _, so := range sourceInfos {
		if so == nil {
			continue
		}
		s.channelCounts[channelKey{TargetSource, so.SourceIndex}] = len(so.ChannelVolume)
		snap.Sources = append(snap.Sources, model.Source{
			Index:  so.SourceIndex,
			Name:   so.SourceName,
			Volume: averageVolume(so.ChannelVolume),
			Muted:  so.Mute,
		})
	}
	for _, in := range inputInfos {
		if in == nil {
			continue
		}
		s.channelCounts[channelKey{TargetSinkInput, in.SinkInputIndex}] = len(in.ChannelVolume)
		snap.SinkInputs = append(snap.SinkInputs, model.SinkInput{
			Index: in.SinkInputIndex,
			Properties: model.StreamProperties{
				Binary:    in.Proplist["application.process.binary"],
				Name:      in.Proplist["application.name"],
				FlatpakId: in.Proplist["application.id"],
			},
			Volume: averageVolume(in.ChannelVolume),
			Muted:  in.Mute,
		})
	}
	return snap, nil
}

func (s *Subsystem) execute(client rawClient, cmd Command) error {
	channels := s.channelCounts[channelKey{cmd.Target, cmd.Index}]
	switch cmd.Kind {
	case CmdSetVolume:
		return s.setVolume(client, cmd.Target, cmd.Index, channelVolume(cmd.Volume, channels))
	case CmdSetMute:
		return s.setMute(client, cmd.Target, cmd.Index, cmd.Mute)
	case CmdToggleMute:
		return s.toggleMute(client, cmd.Target, cmd.Index)
	default:
		return apperr.AudioRequestFailed{Op: "unknown-command", Err: nil}
	}
}

func (s *Subsystem) setVolume(client rawClient, target TargetKind, index uint32, cv pulseproto.ChannelVolume) error {
	switch target {
	case TargetSink:
		return client.RawRequest(&pulseproto.SetSinkVolume{SinkIndex: index, ChannelVolume: cv}, nil)
	case TargetSource:
		return client.RawRequest(&pulseproto.SetSourceVolume{SourceIndex: index, ChannelVolume: cv}, nil)
	case TargetSinkInput:
		return client.RawRequest(&pulseproto.SetSinkInputVolume{SinkInputIndex: index, ChannelVolume: cv}, nil)
	default:
		return apperr.AudioRequestFailed{Op: "set-volume", Err: nil}
	}
}

func (s *Subsystem) setMute(client rawClient, target TargetKind, index uint32, mute bool) error {
	switch target {
	case TargetSink:
		return client.RawRequest(&pulseproto.SetSinkMute{SinkIndex: index, Mute: mute}, nil)
	case TargetSource:
		return client.RawRequest(&pulseproto.SetSourceMute{SourceIndex: index, Mute: mute}, nil)
	case TargetSinkInput:
		return client.RawRequest(&pulseproto.SetSinkInputMute{SinkInputIndex: index, Mute: mute}, nil)
	default:
		return apperr.AudioRequestFailed{Op: "set-mute", Err: nil}
	}
}

func (s *Subsystem) toggleMute(client rawClient, target TargetKind, index uint32) error {
	// The native protocol has no atomic toggle; read current mute state via
	// a fresh snapshot query and flip it. Good enough at button-press rates.
	snap, err := s.querySnapshot(client)
	if err != nil {
		return err
	}
	current, ok := lookupMute(snap, target, index)
	if !ok {
		return apperr.BindingResolutionEmpty{Control: "toggle-mute"}
	}
	return s.setMute(client, target, index, !current)
}

func lookupMute(snap model.AudioSnapshot, target TargetKind, index uint32) (bool, bool) {
	switch target {
	case TargetSink:
		for _, sink := range snap.Sinks {
			if sink.Index == index {
				return sink.Muted, true
			}
		}
	case TargetSource:
		for _, src := range snap.Sources {
			if src.Index == index {
				return src.Muted, true
			}
		}
	case TargetSinkInput:
		for _, in := range snap.SinkInputs {
			if in.Index == index {
				return in.Muted, true
			}
		}
	}
	return false, false
}
