package siteclient

import (
	"sync"
	"time"
)

// DefaultNotificationDuration is how long a notification stays visible
const DefaultNotificationDuration = 3 * time.Second

type NotificationKind int

const (
	NotificationSuccess NotificationKind = iota
	NotificationFailure
)

func (k NotificationKind) String() string {
	if k == NotificationFailure {
		return "failure"
	}
	return "success"
}

type Notification struct {
	Kind NotificationKind
	Text string
}

// Notifier shows at most one notification and dismisses it after a fixed duration.
// A newer notification replaces the current one and restarts the timer.
type Notifier struct {
	mu       sync.Mutex
	duration time.Duration
	current  *Notification
	timer    *time.Timer
	gen      uint64

	// OnChange, when set, is called with the new notification or nil on dismissal
	OnChange func(*Notification)
}

func NewNotifier(duration time.Duration) *Notifier {
	if duration <= 0 {
		duration = DefaultNotificationDuration
	}
	return &Notifier{duration: duration}
}

func (n *Notifier) Success(text string) { n.show(NotificationSuccess, text) }

func (n *Notifier) Failure(text string) { n.show(NotificationFailure, text) }

func (n *Notifier) show(kind NotificationKind, text string) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	note := &Notification{Kind: kind, Text: text}
	n.current = note
	n.timer = time.AfterFunc(n.duration, func() { n.expire(gen) })
	onChange := n.OnChange
	n.mu.Unlock()

	if onChange != nil {
		onChange(note)
	}
}

// expire clears the notification only if nothing newer was shown since
func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen || n.current == nil {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.timer = nil
	onChange := n.OnChange
	n.mu.Unlock()

	if onChange != nil {
		onChange(nil)
	}
}

// Current returns the visible notification, if any
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

// Dismiss hides the current notification immediately
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	gen := n.gen
	n.mu.Unlock()
	n.expire(gen)
}
