package bpfsign

import (
	"github.com/btcsuite/btclog"
	"github.com/sirupsen/logrus"

	"github.com/qinglongcn/bpfsign/txscript"
)

// scriptLogger 把 btclog 日志转发到 logrus
type scriptLogger struct {
	entry *logrus.Entry
	level btclog.Level
}

// newScriptLogger 返回带有子系统字段的转发日志器
func newScriptLogger(subsystem string, level logrus.Level) *scriptLogger {
	return &scriptLogger{
		entry: logrus.WithField("subsystem", subsystem),
		level: btclogLevel(level),
	}
}

// btclogLevel 把 logrus 的级别换算为 btclog 的级别
func btclogLevel(level logrus.Level) btclog.Level {
	switch level {
	case logrus.TraceLevel:
		return btclog.LevelTrace
	case logrus.DebugLevel:
		return btclog.LevelDebug
	case logrus.InfoLevel:
		return btclog.LevelInfo
	case logrus.WarnLevel:
		return btclog.LevelWarn
	case logrus.ErrorLevel:
		return btclog.LevelError
	default:
		return btclog.LevelCritical
	}
}

func (l *scriptLogger) enabled(level btclog.Level) bool {
	return level >= l.level
}

func (l *scriptLogger) Tracef(format string, params ...interface{}) {
	if l.enabled(btclog.LevelTrace) {
		l.entry.Tracef(format, params...)
	}
}

func (l *scriptLogger) Debugf(format string, params ...interface{}) {
	if l.enabled(btclog.LevelDebug) {
		l.entry.Debugf(format, params...)
	}
}

func (l *scriptLogger) Infof(format string, params ...interface{}) {
	if l.enabled(btclog.LevelInfo) {
		l.entry.Infof(format, params...)
	}
}

func (l *scriptLogger) Warnf(format string, params ...interface{}) {
	if l.enabled(btclog.LevelWarn) {
		l.entry.Warnf(format, params...)
	}
}

func (l *scriptLogger) Errorf(format string, params ...interface{}) {
	if l.enabled(btclog.LevelError) {
		l.entry.Errorf(format, params...)
	}
}

func (l *scriptLogger) Criticalf(format string, params ...interface{}) {
	if l.enabled(btclog.LevelCritical) {
		l.entry.Errorf(format, params...)
	}
}

func (l *scriptLogger) Trace(v ...interface{}) {
	if l.enabled(btclog.LevelTrace) {
		l.entry.Trace(v...)
	}
}

func (l *scriptLogger) Debug(v ...interface{}) {
	if l.enabled(btclog.LevelDebug) {
		l.entry.Debug(v...)
	}
}

func (l *scriptLogger) Info(v ...interface{}) {
	if l.enabled(btclog.LevelInfo) {
		l.entry.Info(v...)
	}
}

func (l *scriptLogger) Warn(v ...interface{}) {
	if l.enabled(btclog.LevelWarn) {
		l.entry.Warn(v...)
	}
}

func (l *scriptLogger) Error(v ...interface{}) {
	if l.enabled(btclog.LevelError) {
		l.entry.Error(v...)
	}
}

func (l *scriptLogger) Critical(v ...interface{}) {
	if l.enabled(btclog.LevelCritical) {
		l.entry.Error(v...)
	}
}

func (l *scriptLogger) Level() btclog.Level {
	return l.level
}

func (l *scriptLogger) SetLevel(level btclog.Level) {
	l.level = level
}

// useScriptLogger 让脚本包的日志输出到 logrus
func useScriptLogger(level logrus.Level) {
	txscript.UseLogger(newScriptLogger("txscript", level))
}
