// Package logrus adapts a logrus entry to the nscache Logger interface.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/stellarpay/nscache"
)

type LogrusLogger struct{ E *logrus.Entry }

var _ nscache.Logger = LogrusLogger{}

func (l LogrusLogger) Debug(msg string, f nscache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f nscache.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f nscache.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f nscache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
