package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once     sync.Once
	instance *logrus.Logger
)

// Init configures the package-level logger. level is parsed via
// logrus.ParseLevel; an unrecognized level falls back to Info.
func Init(level string) {
	once.Do(func() {
		instance = logrus.New()
		instance.SetOutput(os.Stdout)
		instance.SetFormatter(&logrus.JSONFormatter{})

		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			parsed = logrus.InfoLevel
		}
		instance.SetLevel(parsed)
	})
}

// GetLogger returns the package-level logger, initializing it with the
// default Info level if Init was never called.
func GetLogger() *logrus.Logger {
	if instance == nil {
		Init("info")
	}
	return instance
}
