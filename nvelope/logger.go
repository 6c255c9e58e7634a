package nvelope

import (
	"fmt"
	"sort"
)

// BasicLogger is just the start of what a logger might
// support.  Drivers and steps in this module log through it
// so that any of the adapters below can be plugged in.
type BasicLogger interface {
	Debug(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
}

// StdLogger is implmented by the base library log.Logger
type StdLogger interface {
	Print(v ...interface{})
}

type wrappedStdLogger struct {
	log StdLogger
}

// LoggerFromStd creates a BasicLogger that prints through a
// standard library style logger.  Fields are printed as key=value
// in key order.
func LoggerFromStd(log StdLogger) BasicLogger {
	return wrappedStdLogger{log: log}
}

func (std wrappedStdLogger) Error(msg string, fields ...map[string]interface{}) {
	if len(fields) == 0 {
		std.log.Print(msg)
		return
	}
	vals := make([]interface{}, 1, len(fields)*4+1)
	vals[0] = msg
	for _, m := range fields {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			vals = append(vals, " "+k+"="+fmt.Sprint(m[k]))
		}
	}
	std.log.Print(vals...)
}

func (std wrappedStdLogger) Warn(msg string, fields ...map[string]interface{}) {
	std.Error(msg, fields...)
}
func (std wrappedStdLogger) Debug(msg string, fields ...map[string]interface{}) {
	std.Error(msg, fields...)
}

// NoLogger is a BasicLogger that discards all inputs
func NoLogger() BasicLogger {
	return nilLogger{}
}

type nilLogger struct{}

var _ BasicLogger = nilLogger{}

func (_ nilLogger) Error(msg string, fields ...map[string]interface{}) {}
func (_ nilLogger) Warn(msg string, fields ...map[string]interface{})  {}
func (_ nilLogger) Debug(msg string, fields ...map[string]interface{}) {}
