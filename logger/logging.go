package logger

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

var (
	enabled atomic.Bool
	logger  = log.New(os.Stdout, "", log.LstdFlags)
)

func init() {
	enabled.Store(true)
}

func EnableLogging(b bool) {
	enabled.Store(b)
}

// SetOutput redirects log output, e.g. away from the terminal UI.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func Info(msg string, v ...interface{}) {
	if !enabled.Load() {
		return
	}
	logger.Printf(msg, v...)
}

func Error(msg string, v ...interface{}) {
	if !enabled.Load() {
		return
	}
	logger.Printf("[ERROR] "+msg, v...)
}
