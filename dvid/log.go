/*
	This file implements a small leveled logging facade used throughout the
	client.  Messages are funneled through a single goroutine so that callers
	never block on the underlying writer, and the backend is pluggable so a
	caller embedding this library can redirect log output.
*/
package dvid

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type ModeFlag uint

const (
	DebugMode ModeFlag = iota
	InfoMode
	WarningMode
	ErrorMode
	CriticalMode
	SilentMode
)

var (
	// mode is a global variable set to the run mode of this process.
	mode ModeFlag = InfoMode

	// logger is the active backend.  Defaults to a logrus-based logger so
	// warnings raised while parsing malformed metadata or handling a
	// non-307 session handshake show up as structured entries.
	logger Logger = newLogrusLogger()

	// we use a single goroutine for writing a stream of messages to the log
	// in an asynchronous manner so logging is never a suspension point.
	logCh chan logMessage
)

type logFunc func(format string, args ...interface{})

type logMessage struct {
	f   logFunc
	msg string
}

const maxPendingLogMessages = 10000

func init() {
	logCh = make(chan logMessage, maxPendingLogMessages)
	go func() {
		for msg := range logCh {
			msg.f(msg.msg)
		}
	}()
}

// PendingLogMessages returns the number of log messages queued to be written.
func PendingLogMessages() int {
	return len(logCh)
}

// Shutdown blocks until the log has been flushed of pending messages.
func Shutdown() {
	for len(logCh) > 0 {
		time.Sleep(10 * time.Millisecond)
	}
	logger.Infof("Logging system shutdown.\n")
}

// Logger lets the application log messages at different severities.
// Implementations vary by backend; the default wraps logrus.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Criticalf(format string, args ...interface{})
}

// SetLogger installs a custom Logger backend, replacing the default logrus one.
func SetLogger(l Logger) {
	if l != nil {
		logger = l
	}
}

// SetLogMode sets the severity required for a log message to be written.
// To turn off all logging, use SilentMode.
func SetLogMode(newMode ModeFlag) {
	mode = newMode
}

func Debugf(format string, args ...interface{}) {
	if mode <= DebugMode {
		logCh <- logMessage{f: logger.Debugf, msg: fmt.Sprintf(format, args...)}
	}
}

func Infof(format string, args ...interface{}) {
	if mode <= InfoMode {
		logCh <- logMessage{f: logger.Infof, msg: fmt.Sprintf(format, args...)}
	}
}

func Warningf(format string, args ...interface{}) {
	if mode <= WarningMode {
		logCh <- logMessage{f: logger.Warningf, msg: fmt.Sprintf(format, args...)}
	}
}

func Errorf(format string, args ...interface{}) {
	if mode <= ErrorMode {
		logCh <- logMessage{f: logger.Errorf, msg: fmt.Sprintf(format, args...)}
	}
}

func Criticalf(format string, args ...interface{}) {
	if mode <= CriticalMode {
		logCh <- logMessage{f: logger.Criticalf, msg: fmt.Sprintf(format, args...)}
	}
}

// TimeLog adds elapsed time to a related string of log messages.
//
//	mylog := dvid.NewTimeLog()
//	...
//	mylog.Infof("batch fetched")  // appends elapsed time since NewTimeLog()
type TimeLog struct {
	start time.Time
}

func NewTimeLog() TimeLog {
	return TimeLog{time.Now()}
}

func (t TimeLog) Infof(format string, args ...interface{}) {
	Infof(format+": %s\n", append(args, time.Since(t.start))...)
}

func (t TimeLog) Warningf(format string, args ...interface{}) {
	Warningf(format+": %s\n", append(args, time.Since(t.start))...)
}

// logrusLogger is the default Logger backend.
type logrusLogger struct {
	entry *logrus.Logger
}

func newLogrusLogger() *logrusLogger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &logrusLogger{entry: l}
}

func (l *logrusLogger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *logrusLogger) Warningf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *logrusLogger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *logrusLogger) Criticalf(format string, args ...interface{}) {
	l.entry.Errorf("CRITICAL: "+format, args...)
}
