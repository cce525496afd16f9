// Package logrus adapts a logrus entry to cachex.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/cachex"
)

var _ cachex.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

func New(l *logrus.Logger) Logger {
	return Logger{E: logrus.NewEntry(l).WithField("component", "cachex")}
}

func (l Logger) Debug(msg string, f cachex.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f cachex.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f cachex.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f cachex.Fields) { l.with(f).Error(msg) }

func (l Logger) with(f cachex.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	out := make(logrus.Fields, len(f))
	for k, v := range f {
		if k == "err" {
			k = logrus.ErrorKey
		}
		out[k] = v
	}
	return l.E.WithFields(out)
}
