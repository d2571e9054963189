// Package logger provides the shared logrus setup and the audit trail for
// slip activity.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates the service logger. Production gets JSON lines for the
// log pipeline; everything else gets colored text for a terminal.
func NewLogger(logLevel, environment string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if environment == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return log
}
