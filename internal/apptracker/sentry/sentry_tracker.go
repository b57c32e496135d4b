package sentry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// We need these variables to be able to mock sentry.CaptureMessage and sentry.CaptureException in tests since
// package level functions cannot be mocked
var (
	captureMessageFunc   = sentry.CaptureMessage
	captureExceptionFunc = sentry.CaptureException
	InitFunc             = sentry.Init
	FlushFunc            = sentry.Flush
)

type sentryTracker struct {
	flushTimeout time.Duration
}

func (s *sentryTracker) CaptureMessage(message string) {
	captureMessageFunc(message)
}

func (s *sentryTracker) CaptureException(exception error) {
	captureExceptionFunc(exception)
}

func (s *sentryTracker) Flush() {
	FlushFunc(s.flushTimeout)
}

// NewSentryTracker initializes the global sentry hub. Events are tagged with the build environment and the command
// that is running.
func NewSentryTracker(dsn, env, command string, flushTimeout time.Duration) (*sentryTracker, error) {
	if err := InitFunc(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		ServerName:  command,
	}); err != nil {
		return nil, fmt.Errorf("unable to initialize sentry: %w", err)
	}
	return &sentryTracker{flushTimeout: flushTimeout}, nil
}
