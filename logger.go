package fernet

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// NewLogger builds the process logger from the resolved options: logLevel
// picks the threshold, logPath/logName pick the sink (stderr when logPath is
// empty or unwritable), devMode picks human-readable output over JSON.
func NewLogger(options *OptionSet) *log.Logger {
	logger := log.New()

	logger.SetLevel(parseLogLevel(options.GetString("logLevel")))

	if options.GetBool("devMode") {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&log.JSONFormatter{})
	}

	logger.SetOutput(logOutput(options))

	return logger
}

func logOutput(options *OptionSet) io.Writer {
	path := options.GetString("logPath")
	if path == "" {
		return os.Stderr
	}

	name := options.GetString("logName")
	if name == "" {
		name = "fernet"
	}

	file, err := os.OpenFile(filepath.Join(path, name+".log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Warnf("cannot open log file, falling back to stderr: %v", err)
		return os.Stderr
	}

	return file
}

func parseLogLevel(level string) log.Level {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}
