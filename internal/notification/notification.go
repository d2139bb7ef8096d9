// Package notification sends desktop notifications through beeep.
package notification

import (
	"log/slog"
	"strconv"

	"github.com/gen2brain/beeep"
)

// AppName is the notification title.
const AppName = "Image Studio"

// notifyFunc is replaced in tests.
var notifyFunc = beeep.Notify

// Notifier sends notifications when enabled.
type Notifier struct {
	enabled bool
	logger  *slog.Logger
}

// New creates a Notifier. A disabled Notifier drops every message.
func New(enabled bool, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{enabled: enabled, logger: logger}
}

// Send shows message. Failures are logged and returned.
func (n *Notifier) Send(message string) error {
	if n == nil || !n.enabled {
		return nil
	}
	n.logger.Debug("sending notification", "message", message)
	if err := notifyFunc(AppName, message, ""); err != nil {
		n.logger.Warn("notification failed", "error", err.Error())
		return err
	}
	return nil
}

// ImagesReady announces a finished generation.
func (n *Notifier) ImagesReady(count int) error {
	if count == 1 {
		return n.Send("Your image is ready")
	}
	return n.Send(strconv.Itoa(count) + " images are ready")
}

// StyleSelected announces the style picked for a suggestion.
func (n *Notifier) StyleSelected(label string) error {
	return n.Send("Style automatically set to: " + label)
}
