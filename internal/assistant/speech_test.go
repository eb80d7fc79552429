package assistant

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestConsoleSpeaker_Say(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSpeaker(&buf)

	if err := s.Say(context.Background(), "light in kitchen turned on"); err != nil {
		t.Fatalf("Say() error = %v", err)
	}
	if got := buf.String(); got != "AI: light in kitchen turned on\n" {
		t.Errorf("output = %q", got)
	}
}

func TestNewExecSpeaker_EmptyCommandLine(t *testing.T) {
	if s := NewExecSpeaker(""); s != nil {
		t.Error("NewExecSpeaker(\"\") should be nil")
	}
	if s := NewExecSpeaker("   "); s != nil {
		t.Error("NewExecSpeaker(blank) should be nil")
	}
}

type errorSpeaker struct{ err error }

func (s errorSpeaker) Say(context.Context, string) error { return s.err }

func TestMultiSpeaker_Say(t *testing.T) {
	var buf bytes.Buffer
	failure := errors.New("engine crashed")
	m := MultiSpeaker{
		errorSpeaker{err: failure},
		NewConsoleSpeaker(&buf),
	}

	err := m.Say(context.Background(), "hello")
	if !errors.Is(err, failure) {
		t.Errorf("Say() error = %v, want first failure", err)
	}
	if buf.Len() == 0 {
		t.Error("later speakers must still run after a failure")
	}
}
