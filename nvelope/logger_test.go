package nvelope_test

import (
	"bytes"
	"log"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muir/nphase/nvelope"
)

func TestLoggerFromStd(t *testing.T) {
	var buf bytes.Buffer
	l := nvelope.LoggerFromStd(log.New(&buf, "", 0))
	l.Warn("slow", map[string]interface{}{"b": 2, "a": 1})
	l.Debug("plain")
	assert.Equal(t, "slow a=1 b=2\nplain\n", buf.String())
}

func TestLoggerFromZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := nvelope.LoggerFromZap(zap.New(core))
	l.Error("failed", map[string]interface{}{"status": 500})
	l.Debug("detail")
	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "failed", entries[0].Message)
		assert.Equal(t, int64(500), entries[0].ContextMap()["status"])
		assert.Equal(t, zap.DebugLevel, entries[1].Level)
	}
}

func TestLoggerFromLogrus(t *testing.T) {
	var buf bytes.Buffer
	lr := logrus.New()
	lr.SetOutput(&buf)
	lr.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	l := nvelope.LoggerFromLogrus(lr)
	l.Warn("careful", map[string]interface{}{"uri": "/x"})
	assert.Equal(t, "level=warning msg=careful uri=/x\n", buf.String())
}

func TestNoLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		nvelope.NoLogger().Error("ignored", map[string]interface{}{"a": 1})
	})
}
