package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns the process-wide JSON logger. Level comes from LOG_LEVEL
// (logrus names); default info.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		l.SetLevel(lvl)
	}
	return l
}

// LogError records a failure with module/function context. Used mainly at
// the orchestrator boundary where external-service errors are swallowed.
func LogError(logger *logrus.Logger, module, funcName, context string, err error) {
	logger.WithFields(logrus.Fields{
		"module":   module,
		"funcName": funcName,
		"context":  context,
	}).Error(err.Error())
}
