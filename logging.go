package rxrecipes

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logger the kitchen embeds.
type Logger interface {
	WithField(string, interface{}) Logger
	With(map[string]interface{}) Logger

	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})

	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
}

func newLogger() Logger {
	return &logrusLogger{
		logrus.StandardLogger(),
	}
}

type logrusLogger struct {
	*logrus.Logger
}

func (l *logrusLogger) WithField(field string, value interface{}) Logger {
	return &logrusEntry{l.Logger.WithField(field, value)}
}

func (l *logrusLogger) With(fields map[string]interface{}) Logger {
	return &logrusEntry{l.Logger.WithFields(fields)}
}

type logrusEntry struct {
	*logrus.Entry
}

func (e *logrusEntry) WithField(field string, value interface{}) Logger {
	return &logrusEntry{e.Entry.WithField(field, value)}
}

func (e *logrusEntry) With(fields map[string]interface{}) Logger {
	return &logrusEntry{e.Entry.WithFields(fields)}
}

// Sink receives the (tag, message) pairs recipes report.
type Sink interface {
	Log(tag, message string)
}

type SinkFunc func(tag, message string)

func (f SinkFunc) Log(tag, message string) {
	f(tag, message)
}

// NewLogSink writes every pair through log with the tag as a field.
func NewLogSink(log Logger) Sink {
	return SinkFunc(func(tag, message string) {
		log.WithField("tag", tag).Info(message)
	})
}

// ConfigureLogging applies KeyLogLevel and KeyLogFormatter to the standard
// logrus logger.
func ConfigureLogging(conf Config) {
	switch strings.ToUpper(conf.GetStringDefault(KeyLogLevel, "INFO")) {
	case "DEBUG":
		logrus.SetLevel(logrus.DebugLevel)
	case "WARN":
		logrus.SetLevel(logrus.WarnLevel)
	case "ERROR":
		logrus.SetLevel(logrus.ErrorLevel)
	case "FATAL":
		logrus.SetLevel(logrus.FatalLevel)
	case "PANIC":
		logrus.SetLevel(logrus.PanicLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	switch conf.GetStringDefault(KeyLogFormatter, "text") {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FullTimestamp:   true,
		})
	}
}

func init() {
	ConfigureLogging(config())
}
