package bpfsign

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btclog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// TestScriptLogger 测试 btclog 日志按级别转发到 logrus。
func TestScriptLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetLevel(logrus.TraceLevel)
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	l := &scriptLogger{entry: logrus.NewEntry(base).WithField("subsystem", "txscript"), level: btclog.LevelWarn}
	var _ btclog.Logger = l

	l.Debugf("hidden %d", 1)
	l.Info("hidden")
	require.Empty(t, buf.String())

	l.Warnf("shown %d", 2)
	require.Contains(t, buf.String(), "shown 2")
	require.Contains(t, buf.String(), "subsystem=txscript")

	l.SetLevel(btclog.LevelTrace)
	require.Equal(t, btclog.LevelTrace, l.Level())
	l.Trace("trace line")
	require.Contains(t, buf.String(), "trace line")
}

// TestBtclogLevel 测试日志级别换算。
func TestBtclogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   logrus.Level
		want btclog.Level
	}{
		{logrus.TraceLevel, btclog.LevelTrace},
		{logrus.DebugLevel, btclog.LevelDebug},
		{logrus.InfoLevel, btclog.LevelInfo},
		{logrus.WarnLevel, btclog.LevelWarn},
		{logrus.ErrorLevel, btclog.LevelError},
		{logrus.FatalLevel, btclog.LevelCritical},
		{logrus.PanicLevel, btclog.LevelCritical},
	}

	t.Logf("Running %d tests", len(tests))
	for _, test := range tests {
		require.Equal(t, test.want, btclogLevel(test.in), test.in.String())
	}
}
