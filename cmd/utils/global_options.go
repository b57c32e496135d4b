package utils

import (
	"go/types"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go/support/config"
)

func DatabaseURLOption(configKey *string, required bool) *config.ConfigOption {
	usage := "Database connection URL. Use sqlite3://path for a local SQLite file."
	if !required {
		usage = "Database connection URL. When set, documents are also upserted into the database. Use sqlite3://path for a local SQLite file."
	}
	return &config.ConfigOption{
		Name:      "database-url",
		Usage:     usage,
		OptType:   types.String,
		ConfigKey: configKey,
		Required:  required,
	}
}

func LogLevelOption(configKey *logrus.Level) *config.ConfigOption {
	return &config.ConfigOption{
		Name:           "log-level",
		Usage:          `The log level used in this project. Options: "TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL", or "PANIC".`,
		OptType:        types.String,
		FlagDefault:    "INFO",
		ConfigKey:      configKey,
		CustomSetValue: SetConfigOptionLogLevel,
		Required:       false,
	}
}

func TrackerDSNOption(configKey *string) *config.ConfigOption {
	return &config.ConfigOption{
		Name:      "tracker-dsn",
		Usage:     "The Sentry DSN. When empty, captured errors are only logged.",
		OptType:   types.String,
		ConfigKey: configKey,
		Required:  false,
	}
}

func EnvironmentOption(configKey *string) *config.ConfigOption {
	return &config.ConfigOption{
		Name:        "environment",
		Usage:       "The environment reported to the error tracker.",
		OptType:     types.String,
		ConfigKey:   configKey,
		FlagDefault: "development",
		Required:    false,
	}
}

func MetricsAddrOption(configKey *string) *config.ConfigOption {
	return &config.ConfigOption{
		Name:      "metrics-addr",
		Usage:     `Address serving /metrics while the command runs, e.g. ":8002". Disabled when empty.`,
		OptType:   types.String,
		ConfigKey: configKey,
		Required:  false,
	}
}

func InputsOption(configKey *[]string, usage string) *config.ConfigOption {
	return &config.ConfigOption{
		Name:           "in",
		Usage:          usage + ` Comma-separated list of ".json" or ".json.gz" files; "-" reads stdin.`,
		OptType:        types.String,
		ConfigKey:      configKey,
		CustomSetValue: SetConfigOptionRecordFiles,
		FlagDefault:    "-",
		Required:       true,
	}
}

func OutputOption(configKey *string, usage string) *config.ConfigOption {
	return &config.ConfigOption{
		Name:      "out",
		Usage:     usage + ` Paths ending in ".gz" are compressed; "-" writes stdout.`,
		OptType:   types.String,
		ConfigKey: configKey,
		Required:  false,
	}
}

// CommonOptions are the options every command accepts.
func CommonOptions(logLevel *logrus.Level, trackerOpts *AppTrackerOptions, metricsAddr *string) config.ConfigOptions {
	return config.ConfigOptions{
		LogLevelOption(logLevel),
		TrackerDSNOption(&trackerOpts.DSN),
		EnvironmentOption(&trackerOpts.Environment),
		MetricsAddrOption(metricsAddr),
	}
}
