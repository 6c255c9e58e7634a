package nvelope

import (
	"github.com/sirupsen/logrus"
)

type logrusLogger struct {
	log logrus.FieldLogger
}

// LoggerFromLogrus adapts a logrus logger or entry.
func LoggerFromLogrus(log logrus.FieldLogger) BasicLogger {
	return logrusLogger{log: log}
}

func (l logrusLogger) with(fields []map[string]interface{}) logrus.FieldLogger {
	log := l.log
	for _, m := range fields {
		log = log.WithFields(logrus.Fields(m))
	}
	return log
}

func (l logrusLogger) Debug(msg string, fields ...map[string]interface{}) {
	l.with(fields).Debug(msg)
}

func (l logrusLogger) Error(msg string, fields ...map[string]interface{}) {
	l.with(fields).Error(msg)
}

func (l logrusLogger) Warn(msg string, fields ...map[string]interface{}) {
	l.with(fields).Warn(msg)
}
