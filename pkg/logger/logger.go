package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New создает логгер с JSON форматом в stdout.
// format "text" включает читаемый формат для локального запуска.
func New(logLevel, format string) *logrus.Logger {
	return NewWithOutput(os.Stdout, logLevel, format)
}

// NewWithOutput создает логгер, пишущий в out
func NewWithOutput(out io.Writer, logLevel, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if strings.EqualFold(format, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	// Уровень логирования
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel // Уровень по умолчанию, если передан некорректный
	}
	log.SetLevel(level)
	return log
}
