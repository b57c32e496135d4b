package sentry

import (
	"errors"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSentryTracker_CaptureMessage(t *testing.T) {
	mockSentry := setupMockSentry(t)
	mockSentry.
		On("Init", mock.Anything).Return(nil).Once().
		On("CaptureMessage", "Test message").Return((*sentry.EventID)(nil)).Once()

	tracker, err := NewSentryTracker("dsn", "test-env", "build", time.Second)
	require.NoError(t, err)
	require.NotNil(t, tracker)

	tracker.CaptureMessage("Test message")
}

func TestSentryTracker_CaptureException(t *testing.T) {
	mockSentry := setupMockSentry(t)
	testError := errors.New("Test exception")
	mockSentry.
		On("Init", mock.Anything).Return(nil).Once().
		On("CaptureException", testError).Return((*sentry.EventID)(nil)).Once()

	tracker, err := NewSentryTracker("dsn", "test-env", "build", time.Second)
	require.NoError(t, err)
	require.NotNil(t, tracker)

	tracker.CaptureException(testError)
}

func TestSentryTracker_Flush(t *testing.T) {
	mockSentry := setupMockSentry(t)
	mockSentry.
		On("Init", mock.Anything).Return(nil).Once().
		On("Flush", 3*time.Second).Return(true).Once()

	tracker, err := NewSentryTracker("dsn", "test-env", "cass merge", 3*time.Second)
	require.NoError(t, err)

	tracker.Flush()
}

func TestNewSentryTracker_Options(t *testing.T) {
	mockSentry := setupMockSentry(t)
	mockSentry.
		On("Init", sentry.ClientOptions{Dsn: "dsn", Environment: "staging", ServerName: "build"}).Return(nil).Once()

	tracker, err := NewSentryTracker("dsn", "staging", "build", time.Second)
	require.NoError(t, err)
	require.NotNil(t, tracker)
}

func TestNewSentryTracker_InitFailure(t *testing.T) {
	mockSentry := setupMockSentry(t)
	initError := errors.New("init error")
	mockSentry.
		On("Init", mock.Anything).Return(initError).Once()

	tracker, err := NewSentryTracker("dsn", "test-env", "build", time.Second)
	require.Error(t, err)
	require.ErrorContains(t, err, "unable to initialize sentry: init error")
	require.Nil(t, tracker)
}
