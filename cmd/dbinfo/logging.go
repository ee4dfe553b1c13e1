package main

import (
	"io"

	"github.com/sirupsen/logrus"
)

// newLogger configures a text logger. Unknown levels fall back to info.
func newLogger(levelStr string, out io.Writer) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(out)
	return logger
}
