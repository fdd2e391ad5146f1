package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogDispatcher is the delivery boundary used when no real mail transport is
// wired: it records the outbound message and honors context cancellation the
// way a network-backed dispatcher would.
type LogDispatcher struct {
	log *logrus.Logger
}

func NewLogDispatcher(log *logrus.Logger) *LogDispatcher { return &LogDispatcher{log: log} }

func (d *LogDispatcher) Notify(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.log.WithFields(logrus.Fields{
		"recipient": recipient,
		"subject":   subject,
	}).Info("notification dispatched")
	return nil
}
