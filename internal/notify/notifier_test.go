package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/betnix/hearth/internal/device"
)

// MockSender records deliveries and fails selected recipients.
type MockSender struct {
	mu       sync.Mutex
	sent     []string
	subjects []string
	bodies   []string
	failFor  map[string]error
}

func (m *MockSender) Send(_ context.Context, _ Provider, user User, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[user.Email]; ok {
		return err
	}
	m.sent = append(m.sent, user.Email)
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, body)
	return nil
}

func (m *MockSender) delivered() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}

func testProviders() map[string]Provider {
	return map[string]Provider{
		"gmail.com":  {Host: "smtp.gmail.com", Port: 587},
		"betnix.com": {Host: "smtp.betnix.com", Port: 587},
	}
}

func testEvent() device.Event {
	return device.Event{Room: "kitchen", Type: "light", On: true, At: time.Now().UTC()}
}

func TestNotifier_FanOut_AllDelivered(t *testing.T) {
	users := []User{
		{Email: "a@gmail.com", Password: "pw"},
		{Email: "b@betnix.com", Password: "pw"},
	}
	n := NewNotifier(testProviders(), users, time.Second)
	sender := &MockSender{}
	n.SetSender(sender)

	failures := n.FanOut(context.Background(), testEvent())
	if len(failures) != 0 {
		t.Fatalf("FanOut() failures = %v, want none", failures)
	}
	if got := sender.delivered(); len(got) != 2 {
		t.Errorf("delivered to %v, want 2 recipients", got)
	}
}

func TestNotifier_FanOut_MessageTemplate(t *testing.T) {
	users := []User{{Email: "a@gmail.com", Password: "pw"}}
	n := NewNotifier(testProviders(), users, time.Second)
	sender := &MockSender{}
	n.SetSender(sender)

	if failures := n.FanOut(context.Background(), testEvent()); len(failures) != 0 {
		t.Fatalf("FanOut() failures = %v, want none", failures)
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.subjects) != 1 || sender.subjects[0] != "light in kitchen changed" {
		t.Errorf("subject = %q, want %q", sender.subjects, "light in kitchen changed")
	}
	if len(sender.bodies) != 1 || sender.bodies[0] != "The light in kitchen was turned on." {
		t.Errorf("body = %q, want %q", sender.bodies, "The light in kitchen was turned on.")
	}
}

func TestNotifier_FanOut_IncompleteRecordsSkipped(t *testing.T) {
	users := []User{
		{Email: "a@gmail.com", Password: "pw"},
		{Email: "", Password: "pw"},
		{Email: "c@gmail.com", Password: ""},
	}
	n := NewNotifier(testProviders(), users, time.Second)
	sender := &MockSender{}
	n.SetSender(sender)

	failures := n.FanOut(context.Background(), testEvent())
	if len(failures) != 0 {
		t.Fatalf("FanOut() failures = %v, incomplete records must not count as failures", failures)
	}
	if got := sender.delivered(); len(got) != 1 || got[0] != "a@gmail.com" {
		t.Errorf("delivered to %v, want only a@gmail.com", got)
	}
}

func TestNotifier_FanOut_UnsupportedProvider(t *testing.T) {
	users := []User{
		{Email: "a@nowhere.example", Password: "pw"},
		{Email: "b@gmail.com", Password: "pw"},
	}
	n := NewNotifier(testProviders(), users, time.Second)
	sender := &MockSender{}
	n.SetSender(sender)

	failures := n.FanOut(context.Background(), testEvent())
	if len(failures) != 1 {
		t.Fatalf("FanOut() failures = %v, want 1", failures)
	}
	if failures[0].Email != "a@nowhere.example" {
		t.Errorf("failure email = %q", failures[0].Email)
	}
	if !errors.Is(failures[0].Err, ErrUnsupportedProvider) {
		t.Errorf("failure err = %v, want ErrUnsupportedProvider", failures[0].Err)
	}
	if got := sender.delivered(); len(got) != 1 || got[0] != "b@gmail.com" {
		t.Errorf("delivered to %v, remaining users must still be served", got)
	}
}

func TestNotifier_FanOut_MalformedAddress(t *testing.T) {
	users := []User{{Email: "not-an-address", Password: "pw"}}
	n := NewNotifier(testProviders(), users, time.Second)
	n.SetSender(&MockSender{})

	failures := n.FanOut(context.Background(), testEvent())
	if len(failures) != 1 || !errors.Is(failures[0].Err, ErrMalformedAddress) {
		t.Errorf("FanOut() failures = %v, want one ErrMalformedAddress", failures)
	}
}

func TestNotifier_FanOut_SendFailureIsolated(t *testing.T) {
	users := []User{
		{Email: "a@gmail.com", Password: "pw"},
		{Email: "b@gmail.com", Password: "pw"},
		{Email: "c@betnix.com", Password: "pw"},
	}
	n := NewNotifier(testProviders(), users, time.Second)
	sender := &MockSender{failFor: map[string]error{"b@gmail.com": errors.New("auth rejected")}}
	n.SetSender(sender)

	failures := n.FanOut(context.Background(), testEvent())
	if len(failures) != 1 || failures[0].Email != "b@gmail.com" {
		t.Fatalf("FanOut() failures = %v, want only b@gmail.com", failures)
	}
	if got := sender.delivered(); len(got) != 2 {
		t.Errorf("delivered to %v, failure must not block other recipients", got)
	}
}

func TestNotifier_Notify_ReturnsFailedAddresses(t *testing.T) {
	users := []User{
		{Email: "a@gmail.com", Password: "pw"},
		{Email: "b@nowhere.example", Password: "pw"},
	}
	n := NewNotifier(testProviders(), users, time.Second)
	n.SetSender(&MockSender{})

	failed := n.Notify(context.Background(), testEvent())
	if len(failed) != 1 || failed[0] != "b@nowhere.example" {
		t.Errorf("Notify() = %v, want [b@nowhere.example]", failed)
	}
}

func TestNotifier_ProviderDomainCaseInsensitive(t *testing.T) {
	users := []User{{Email: "a@Gmail.COM", Password: "pw"}}
	n := NewNotifier(testProviders(), users, time.Second)
	sender := &MockSender{}
	n.SetSender(sender)

	if failures := n.FanOut(context.Background(), testEvent()); len(failures) != 0 {
		t.Errorf("FanOut() failures = %v, domain match must be case-insensitive", failures)
	}
}
