// Package apptracker reports fatal run errors to an external error tracker.
package apptracker

type AppTracker interface {
	CaptureMessage(message string)
	CaptureException(exception error)
	// Flush waits for buffered events to be delivered. Commands call it before exiting.
	Flush()
}
