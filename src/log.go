package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Library-wide logging.
 *
 *		All messages funnel through a single charmbracelet logger
 *		so an application can replace or silence it wholesale.
 *		Verbosity comes from the AZAUDIO_LOG_LEVEL environment
 *		variable: none, error, info or trace.
 *
 *---------------------------------------------------------------*/

import (
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelTrace
)

var logLevel = LogLevelInfo

var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	Prefix: "AzAudio",
})

// SetLogger replaces the library logger. Passing nil restores the default.
func SetLogger(l *charmlog.Logger) {
	if l == nil {
		logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Prefix: "AzAudio",
		})
		applyLogLevel()
		return
	}
	logger = l
}

func SetLogLevel(level LogLevel) {
	logLevel = level
	applyLogLevel()
}

func applyLogLevel() {
	switch logLevel {
	case LogLevelNone:
		logger.SetLevel(charmlog.FatalLevel)
	case LogLevelError:
		logger.SetLevel(charmlog.ErrorLevel)
	case LogLevelInfo:
		logger.SetLevel(charmlog.InfoLevel)
	case LogLevelTrace:
		logger.SetLevel(charmlog.DebugLevel)
	}
}

func logLevelFromEnvironment() {
	switch strings.ToLower(os.Getenv("AZAUDIO_LOG_LEVEL")) {
	case "none":
		logLevel = LogLevelNone
	case "error":
		logLevel = LogLevelError
	case "info":
		logLevel = LogLevelInfo
	case "trace":
		logLevel = LogLevelTrace
	}
	applyLogLevel()
}

func logError(format string, args ...any) {
	if logLevel >= LogLevelError {
		logger.Errorf(format, args...)
	}
}

func logInfo(format string, args ...any) {
	if logLevel >= LogLevelInfo {
		logger.Infof(format, args...)
	}
}

func logTrace(format string, args ...any) {
	if logLevel >= LogLevelTrace {
		logger.Debugf(format, args...)
	}
}
