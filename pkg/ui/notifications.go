package ui

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// NotificationSender delivers a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", "--app-name=redditstats", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// Notifier reports the end of long searches on the console and, where the
// platform supports it, as a desktop notification
type Notifier struct {
	sender NotificationSender
	out    io.Writer
}

// NewNotifier creates a Notifier for the current platform. Platforms
// without a sender only get console output.
func NewNotifier(out io.Writer) *Notifier {
	var sender NotificationSender
	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	}
	return NewNotifierWithSender(out, sender)
}

// NewNotifierWithSender creates a Notifier using sender, which may be nil
func NewNotifierWithSender(out io.Writer, sender NotificationSender) *Notifier {
	if out == nil {
		out = Output
	}
	return &Notifier{sender: sender, out: out}
}

// SendSuccess reports a finished search
func (n *Notifier) SendSuccess(title, message string) error {
	fmt.Fprintf(n.out, "\n%s: %s\n", Green(title), Green(message))
	return n.send(title, message)
}

// SendError reports a failed search
func (n *Notifier) SendError(title, message string) error {
	fmt.Fprintf(n.out, "\n%s: %s\n", Red(title), Red(message))
	return n.send(title, message)
}

func (n *Notifier) send(title, message string) error {
	if n.sender == nil {
		return nil
	}
	if err := n.sender.Send(title, message); err != nil {
		return fmt.Errorf("desktop notification failed: %w", err)
	}
	return nil
}
