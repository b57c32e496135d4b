// Package dryrun provides an AppTracker that only logs, used when no tracker DSN is configured.
package dryrun

import (
	"github.com/stellar/go/support/log"
)

type DryRunTracker struct{}

func (d *DryRunTracker) CaptureMessage(message string) {
	log.WithField("tracker", "dry-run").Warn(message)
}

func (d *DryRunTracker) CaptureException(exception error) {
	log.WithField("tracker", "dry-run").Errorf("captured exception: %v", exception)
}

func (d *DryRunTracker) Flush() {}
