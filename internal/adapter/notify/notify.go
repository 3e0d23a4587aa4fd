// Package notify surfaces user notifications through the service logger.
package notify

import (
	"github.com/sirupsen/logrus"

	"github.com/EmerJK/emertxthn/internal/port"
)

// LogNotifier reports notifications as log lines tagged for the user.
type LogNotifier struct {
	log logrus.FieldLogger
}

var _ port.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log.WithField("notify", "user")}
}

func (n *LogNotifier) Info(msg string) {
	n.log.Info(msg)
}

func (n *LogNotifier) Warn(msg string) {
	n.log.Warn(msg)
}
