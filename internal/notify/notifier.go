package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"

	"github.com/betnix/hearth/internal/device"
)

// User is a notification recipient. Each user authenticates against their
// own provider's SMTP submission port with their own credentials; the
// message is sent from the user's address to itself.
type User struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// complete reports whether the record carries both fields needed to
// authenticate. Incomplete records are skipped silently during fanout.
func (u User) complete() bool {
	return u.Email != "" && u.Password != ""
}

// Provider is an SMTP submission endpoint for one mail domain.
type Provider struct {
	Host string
	Port int
}

// Addr returns the host:port dial address for the provider.
func (p Provider) Addr() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// Failure records one recipient that could not be notified and why.
type Failure struct {
	Email string
	Err   error
}

// Sender delivers a single message through a provider. Implementations
// must respect the context deadline.
type Sender interface {
	Send(ctx context.Context, provider Provider, user User, subject, body string) error
}

// Logger defines the logging interface used by the Notifier.
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

// Notifier fans state-change notifications out to every registered user.
//
// Fanout is strictly per-recipient: one bad address, missing credential,
// or unreachable provider never blocks delivery to the others, and the
// fanout as a whole never fails.
type Notifier struct {
	providers map[string]Provider
	users     []User
	sender    Sender
	timeout   time.Duration
	logger    Logger
}

// NewNotifier creates a notifier over the given provider table and user
// list. Domains are matched case-insensitively.
func NewNotifier(providers map[string]Provider, users []User, timeout time.Duration) *Notifier {
	table := make(map[string]Provider, len(providers))
	for domain, p := range providers {
		table[strings.ToLower(domain)] = p
	}
	return &Notifier{
		providers: table,
		users:     users,
		sender:    &smtpSender{},
		timeout:   timeout,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the notifier.
func (n *Notifier) SetLogger(logger Logger) {
	n.logger = logger
}

// SetSender overrides the SMTP sender. Used by tests.
func (n *Notifier) SetSender(sender Sender) {
	n.sender = sender
}

// FanOut delivers a state-change notification to every registered user
// and returns the per-recipient failures. Users with a missing email or
// password are skipped without being counted as failures.
func (n *Notifier) FanOut(ctx context.Context, ev device.Event) []Failure {
	subject := fmt.Sprintf("%s in %s changed", ev.Type, ev.Room)
	body := fmt.Sprintf("The %s in %s was turned %s.", ev.Type, ev.Room, ev.StateWord())

	var failures []Failure
	for _, user := range n.users {
		if !user.complete() {
			n.logger.Debug("skipping incomplete user record")
			continue
		}

		if err := n.send(ctx, user, subject, body); err != nil {
			n.logger.Warn("notification failed", "email", user.Email, "error", err)
			failures = append(failures, Failure{Email: user.Email, Err: err})
			continue
		}
		n.logger.Debug("notification sent", "email", user.Email)
	}
	return failures
}

// Notify satisfies the registry's notifier contract, reducing failures
// to the list of unreachable addresses.
func (n *Notifier) Notify(ctx context.Context, ev device.Event) []string {
	failures := n.FanOut(ctx, ev)
	if len(failures) == 0 {
		return nil
	}
	failed := make([]string, len(failures))
	for i, f := range failures {
		failed[i] = f.Email
	}
	return failed
}

// send resolves the recipient's provider and delivers one message with a
// bounded wait.
func (n *Notifier) send(ctx context.Context, user User, subject, body string) error {
	provider, err := n.resolveProvider(user.Email)
	if err != nil {
		return err
	}

	sendCtx := ctx
	if n.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	return n.sender.Send(sendCtx, provider, user, subject, body)
}

// resolveProvider maps an email address to its SMTP provider via the
// domain part after "@".
func (n *Notifier) resolveProvider(address string) (Provider, error) {
	_, domain, found := strings.Cut(address, "@")
	if !found || domain == "" {
		return Provider{}, fmt.Errorf("%w: %q", ErrMalformedAddress, address)
	}

	provider, ok := n.providers[strings.ToLower(domain)]
	if !ok {
		return Provider{}, fmt.Errorf("%w: %q", ErrUnsupportedProvider, domain)
	}
	return provider, nil
}

// smtpSender delivers mail over SMTP with STARTTLS on the submission
// port, authenticating as the recipient themselves.
type smtpSender struct{}

func (s *smtpSender) Send(ctx context.Context, provider Provider, user User, subject, body string) error {
	msg := email.NewEmail()
	msg.From = user.Email
	msg.To = []string{user.Email}
	msg.Subject = subject
	msg.Text = []byte(body)

	auth := smtp.PlainAuth("", user.Email, user.Password, provider.Host)
	tlsConfig := &tls.Config{ServerName: provider.Host}

	// The email library has no context support, so the wait is bounded
	// here. An abandoned send goroutine finishes (or fails) on the SMTP
	// library's own socket handling.
	done := make(chan error, 1)
	go func() {
		done <- msg.SendWithStartTLS(provider.Addr(), auth, tlsConfig)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("sending via %s: %w", provider.Addr(), err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %s", ErrSendTimeout, provider.Addr())
	}
}
