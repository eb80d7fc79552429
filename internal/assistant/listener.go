package assistant

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// Listener reads command lines from an input stream and feeds the ones
// addressed to the assistant through the wake phrase filter.
//
// With a wake phrase configured, only lines containing it (anywhere,
// case-insensitively) are handled, and the command is the text after the
// phrase's first occurrence. With no wake phrase, every line is a
// command.
type Listener struct {
	assistant  *Assistant
	wakePhrase string
	logger     Logger
}

// NewListener creates a listener feeding the given assistant.
func NewListener(assistant *Assistant, wakePhrase string) *Listener {
	return &Listener{
		assistant:  assistant,
		wakePhrase: strings.ToLower(strings.TrimSpace(wakePhrase)),
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the listener.
func (l *Listener) SetLogger(logger Logger) {
	l.logger = logger
}

// Run consumes lines from r until it is exhausted or the context is
// cancelled. Returns nil on a clean end of input, the scanner's error
// otherwise.
func (l *Listener) Run(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			l.handleLine(ctx, line)
		}
	}
}

// handleLine applies the wake phrase filter and dispatches the command.
func (l *Listener) handleLine(ctx context.Context, line string) {
	command, ok := l.extract(line)
	if !ok {
		l.logger.Debug("line ignored, no wake phrase")
		return
	}
	if strings.TrimSpace(command) == "" {
		l.logger.Debug("wake phrase with empty command")
	}
	l.assistant.HandleCommand(ctx, command)
}

// extract returns the command portion of a line, stripping everything up
// to and including the wake phrase.
func (l *Listener) extract(line string) (string, bool) {
	if l.wakePhrase == "" {
		return line, true
	}
	idx := strings.Index(strings.ToLower(line), l.wakePhrase)
	if idx < 0 {
		return "", false
	}
	return line[idx+len(l.wakePhrase):], true
}
