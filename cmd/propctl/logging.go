package main

import (
	"github.com/sirupsen/logrus"
)

// setupLogging configures the standard logger. Unknown levels fall back to
// warnings only.
func setupLogging(level string) *logrus.Logger {
	logger := logrus.StandardLogger()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}

	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	return logger
}

// badgerLogger adapts logrus to badger's Logger interface.
type badgerLogger struct {
	logger *logrus.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Errorf("[badger] "+format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warnf("[badger] "+format, args...)
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debugf("[badger] "+format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Tracef("[badger] "+format, args...)
}

// pebbleLogger adapts logrus to pebble's Logger interface.
type pebbleLogger struct {
	logger *logrus.Logger
}

func (l *pebbleLogger) Infof(format string, args ...any) {
	l.logger.Debugf("[pebble] "+format, args...)
}

func (l *pebbleLogger) Errorf(format string, args ...any) {
	l.logger.Errorf("[pebble] "+format, args...)
}

func (l *pebbleLogger) Fatalf(format string, args ...any) {
	l.logger.Fatalf("[pebble] "+format, args...)
}
