// Package toast holds the single-slot transient notification shown on the
// dashboard. Only one message exists at a time: showing another replaces the
// current one and restarts the dismissal timer.
package toast

import (
	"sync"
	"time"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Message is what the layout renders while the slot is occupied.
type Message struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// DefaultDuration matches the panel's historical 3 second auto-dismiss.
const DefaultDuration = 3 * time.Second

type Notifier struct {
	mu       sync.Mutex
	current  *Message
	timer    *time.Timer
	duration time.Duration
	closed   bool
}

func NewNotifier(duration time.Duration) *Notifier {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Notifier{duration: duration}
}

// Show replaces whatever is displayed and restarts the dismissal timer.
func (n *Notifier) Show(text string, severity Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.current = &Message{Text: text, Severity: severity}
	n.timer = time.AfterFunc(n.duration, n.dismiss)
}

// Current returns the visible message, nil once dismissed.
func (n *Notifier) Current() *Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Dismiss hides the message early and cancels the pending timer.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
}

// Close dismisses and refuses further messages. Safe to call with a timer
// still pending.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
	n.closed = true
}

func (n *Notifier) dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = nil
	n.timer = nil
}
