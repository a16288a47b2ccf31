// Package logging builds the process loggers.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a prefixed logger writing to stderr. When logFile is
// non-empty, output is teed into a size-rotated file as well.
func New(prefix, logFile string) *log.Logger {
	var w io.Writer = os.Stderr
	if logFile != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}
	return log.New(w, prefix, log.LstdFlags)
}
