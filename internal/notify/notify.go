package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// Notification represents a desktop notification
type Notification struct {
	Title string
	Body  string
}

// sendFunc delivers a notification. Swapped out in tests.
type sendFunc func(title, body string) error

func beeepSend(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
	send    sendFunc
}

// NewNotifier creates a new notifier
func NewNotifier(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		send:    beeepSend,
	}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n != nil && n.enabled
}

// Send sends a desktop notification. A nil or disabled notifier drops it.
func (n *Notifier) Send(notification Notification) error {
	if !n.IsEnabled() {
		return nil
	}
	if err := n.send(notification.Title, notification.Body); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// SendWriteFailed tells the user an edit could not be saved. The edit is
// still on screen; it is not retried.
func (n *Notifier) SendWriteFailed(taskTitle string, err error) error {
	return n.Send(Notification{
		Title: "tasksrus: could not save",
		Body:  fmt.Sprintf("%q: %v", taskTitle, err),
	})
}
