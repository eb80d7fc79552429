package assistant

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Speaker voices assistant output to the user.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// ConsoleSpeaker prints assistant output to a writer, prefixed so it
// stands apart from the user's own typed lines.
type ConsoleSpeaker struct {
	w io.Writer
}

// NewConsoleSpeaker creates a console speaker writing to w.
func NewConsoleSpeaker(w io.Writer) *ConsoleSpeaker {
	return &ConsoleSpeaker{w: w}
}

// Say writes the text with the assistant prefix.
func (s *ConsoleSpeaker) Say(_ context.Context, text string) error {
	_, err := fmt.Fprintf(s.w, "AI: %s\n", text)
	return err
}

// ExecSpeaker voices output through an external text-to-speech command
// (espeak, say). The text is appended as the final argument.
type ExecSpeaker struct {
	command string
	args    []string
}

// NewExecSpeaker parses a command line like "espeak -s 140" into an exec
// speaker. Returns nil when the command line is empty.
func NewExecSpeaker(commandLine string) *ExecSpeaker {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	return &ExecSpeaker{command: fields[0], args: fields[1:]}
}

// Say runs the text-to-speech command and waits for it to finish.
func (s *ExecSpeaker) Say(ctx context.Context, text string) error {
	args := append(append([]string{}, s.args...), text)
	cmd := exec.CommandContext(ctx, s.command, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", s.command, err)
	}
	return nil
}

// MultiSpeaker fans output to several speakers, keeping the console copy
// even when a text-to-speech engine is configured. The first error is
// returned after all speakers have been tried.
type MultiSpeaker []Speaker

func (m MultiSpeaker) Say(ctx context.Context, text string) error {
	var first error
	for _, s := range m {
		if err := s.Say(ctx, text); err != nil && first == nil {
			first = err
		}
	}
	return first
}
