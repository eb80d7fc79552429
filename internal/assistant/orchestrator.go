package assistant

import (
	"context"
	"errors"

	"github.com/betnix/hearth/internal/device"
	"github.com/betnix/hearth/internal/interpreter"
)

// Logger defines the logging interface used by the assistant.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// DeviceController is the slice of the device registry the assistant
// drives: the current catalogue for matching and state changes for
// resolved commands.
type DeviceController interface {
	List() []device.Device
	SetState(ctx context.Context, room, deviceType string, desired bool) (device.Result, error)
}

// Assistant turns one command line into device actions and speech.
//
// A command that matches devices triggers a state change and a spoken
// confirmation per device. A command that matches nothing is handed to
// the conversational responder, falling back to a fixed line when the
// responder is unreachable. Handling never fails: every path ends in
// something being spoken.
type Assistant struct {
	devices   DeviceController
	responder Responder
	speaker   Speaker
	logger    Logger
}

// NewAssistant creates an assistant over the given collaborators. A nil
// responder falls back to StaticResponder.
func NewAssistant(devices DeviceController, responder Responder, speaker Speaker) *Assistant {
	if responder == nil {
		responder = StaticResponder{}
	}
	return &Assistant{
		devices:   devices,
		responder: responder,
		speaker:   speaker,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the assistant.
func (a *Assistant) SetLogger(logger Logger) {
	a.logger = logger
}

// HandleCommand interprets and executes one command.
func (a *Assistant) HandleCommand(ctx context.Context, command string) {
	matches := interpreter.Resolve(command, a.devices.List())
	if len(matches) == 0 {
		a.respond(ctx, command)
		return
	}

	for _, m := range matches {
		res, err := a.devices.SetState(ctx, m.Room, m.Type, m.On)
		if err != nil {
			// The match came from the live catalogue, so this only
			// happens when a device disappears mid-command.
			if errors.Is(err, device.ErrDeviceNotFound) {
				a.logger.Warn("matched device vanished", "room", m.Room, "type", m.Type)
				continue
			}
			a.logger.Error("state change failed", "room", m.Room, "type", m.Type, "error", err)
			continue
		}
		a.say(ctx, res.Feedback)
	}
}

// respond asks the conversational responder and speaks its reply, or the
// fixed fallback when the responder fails.
func (a *Assistant) respond(ctx context.Context, command string) {
	reply, err := a.responder.Reply(ctx, command)
	if err != nil {
		a.logger.Warn("responder failed", "error", err)
		reply = fallbackReply
	}
	a.say(ctx, reply)
}

func (a *Assistant) say(ctx context.Context, text string) {
	if a.speaker == nil {
		return
	}
	if err := a.speaker.Say(ctx, text); err != nil {
		a.logger.Warn("speech output failed", "error", err)
	}
}
