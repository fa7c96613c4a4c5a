package contract

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the shared diagnostic logger. It writes to stderr so that stdout
// stays free for tables and the MCP protocol.
var Logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// ConfigureLogger applies the level and format from a validated config.
func ConfigureLogger(l *logrus.Logger, cfg *Config) {
	l.SetLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: !cfg.UseColors})
	}
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger.WithError(err).WithField("kind", KindOf(err)).Error(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger.WithError(err).Warn(msg)
}
