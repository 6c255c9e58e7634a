package nvelope

import (
	"go.uber.org/zap"
)

type zapLogger struct {
	log *zap.Logger
}

var _ LogFlusher = zapLogger{}

// LoggerFromZap adapts a zap logger.  Each field becomes a zap.Any.
func LoggerFromZap(log *zap.Logger) BasicLogger {
	return zapLogger{log: log}
}

func zapFields(fields []map[string]interface{}) []zap.Field {
	var zf []zap.Field
	for _, m := range fields {
		for k, v := range m {
			zf = append(zf, zap.Any(k, v))
		}
	}
	return zf
}

func (z zapLogger) Debug(msg string, fields ...map[string]interface{}) {
	z.log.Debug(msg, zapFields(fields)...)
}

func (z zapLogger) Error(msg string, fields ...map[string]interface{}) {
	z.log.Error(msg, zapFields(fields)...)
}

func (z zapLogger) Warn(msg string, fields ...map[string]interface{}) {
	z.log.Warn(msg, zapFields(fields)...)
}

func (z zapLogger) Flush() {
	_ = z.log.Sync()
}
