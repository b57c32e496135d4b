package utils

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/stellar/go/support/config"

	"github.com/real-comp/mvr-common/internal/apptracker"
	"github.com/real-comp/mvr-common/internal/apptracker/dryrun"
	"github.com/real-comp/mvr-common/internal/apptracker/sentry"
)

const defaultTrackerFlushTimeout = 5 * time.Second

func DefaultPersistentPreRunE(cfgOpts config.ConfigOptions) func(_ *cobra.Command, _ []string) error {
	return func(_ *cobra.Command, _ []string) error {
		if err := cfgOpts.RequireE(); err != nil {
			return fmt.Errorf("requiring values of config options: %w", err)
		}
		if err := cfgOpts.SetValues(); err != nil {
			return fmt.Errorf("setting values of config options: %w", err)
		}
		return nil
	}
}

type AppTrackerOptions struct {
	DSN          string
	Environment  string
	FlushTimeout time.Duration
}

// AppTrackerResolver returns a Sentry tracker when a DSN is configured and a tracker that only logs otherwise.
func AppTrackerResolver(opts AppTrackerOptions, command string) (apptracker.AppTracker, error) {
	if opts.DSN == "" {
		return &dryrun.DryRunTracker{}, nil
	}

	flushTimeout := opts.FlushTimeout
	if flushTimeout == 0 {
		flushTimeout = defaultTrackerFlushTimeout
	}
	tracker, err := sentry.NewSentryTracker(opts.DSN, opts.Environment, command, flushTimeout)
	if err != nil {
		return nil, fmt.Errorf("resolving app tracker: %w", err)
	}
	return tracker, nil
}
