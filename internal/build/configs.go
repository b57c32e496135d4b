// Package build wires the record files, the consolidation and correlation engines, the optional document database
// and the observability stack into the runs behind the mvr commands.
package build

import (
	"github.com/sirupsen/logrus"

	"github.com/real-comp/mvr-common/internal/apptracker"
)

// CommonConfigs are shared by every command.
type CommonConfigs struct {
	LogLevel    logrus.Level
	AppTracker  apptracker.AppTracker
	MetricsAddr string
}

type Configs struct {
	CommonConfigs
	// Inputs are the transaction record files, read in order.
	Inputs []string
	// Output is the document record file. It defaults to stdout unless DatabaseURL is set.
	Output string
	// Attributes are stamped on every transaction before grouping.
	Attributes map[string]string
	// BuildDate is stamped on every document as the buildDate attribute.
	BuildDate string
	// Shuffle buffers the whole input instead of requiring transactions grouped by id.
	Shuffle     bool
	Workers     int
	BatchSize   int
	DatabaseURL string
}

type CassInputConfigs struct {
	CommonConfigs
	Inputs    []string
	Output    string
	AssignIDs bool
}

type CassMergeConfigs struct {
	CommonConfigs
	// Inputs are the transaction record files, sorted by transaction id.
	Inputs []string
	// Addresses are the standardized address record files, sorted by address id.
	Addresses []string
	Output    string
}
