package cmd

import (
	"fmt"
	"go/types"

	"github.com/spf13/cobra"
	"github.com/stellar/go/support/config"
	"github.com/stellar/go/support/log"

	"github.com/real-comp/mvr-common/cmd/utils"
	"github.com/real-comp/mvr-common/internal/build"
	"github.com/real-comp/mvr-common/internal/consolidate"
)

type buildCmd struct{}

func (c *buildCmd) Command() *cobra.Command {
	cfg := build.Configs{}
	trackerOpts := utils.AppTrackerOptions{}

	cfgOpts := utils.CommonOptions(&cfg.LogLevel, &trackerOpts, &cfg.MetricsAddr)
	cfgOpts = append(cfgOpts,
		utils.InputsOption(&cfg.Inputs, "Transaction record files, grouped by document id unless --shuffle is set."),
		utils.OutputOption(&cfg.Output, "Document record file. Defaults to stdout unless --database-url is set."),
		utils.DatabaseURLOption(&cfg.DatabaseURL, false),
		&config.ConfigOption{
			Name:           "attr",
			Usage:          `Attributes stamped on every transaction, as a comma-separated list of key:value pairs.`,
			OptType:        types.String,
			CustomSetValue: utils.SetConfigOptionAttributes,
			ConfigKey:      &cfg.Attributes,
			Required:       false,
		},
		&config.ConfigOption{
			Name:           "build-date",
			Usage:          "The buildDate attribute of every document, as YYYYMMDD. Defaults to today.",
			OptType:        types.String,
			CustomSetValue: utils.SetConfigOptionBuildDate,
			ConfigKey:      &cfg.BuildDate,
			Required:       false,
		},
		&config.ConfigOption{
			Name:        "shuffle",
			Usage:       "Buffer the whole input in memory so transactions of a document id do not need to be adjacent.",
			OptType:     types.Bool,
			ConfigKey:   &cfg.Shuffle,
			FlagDefault: false,
			Required:    false,
		},
		&config.ConfigOption{
			Name:        "workers",
			Usage:       "Number of document ids consolidated in parallel. Defaults to the number of CPUs.",
			OptType:     types.Int,
			ConfigKey:   &cfg.Workers,
			FlagDefault: 0,
			Required:    false,
		},
		&config.ConfigOption{
			Name:        "batch-size",
			Usage:       "Number of document ids consolidated and written per batch.",
			OptType:     types.Int,
			ConfigKey:   &cfg.BatchSize,
			FlagDefault: consolidate.DefaultBatchSize,
			Required:    false,
		},
	)

	cmd := &cobra.Command{
		Use:               "build",
		Short:             "Consolidate transactions into documents",
		PersistentPreRunE: preRunE(cfgOpts, &cfg.CommonConfigs, &trackerOpts, build.CommandBuild),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.Run(cmd, cfg)
		},
	}

	if err := cfgOpts.Init(cmd); err != nil {
		log.Fatalf("Error initializing a config option: %s", err.Error())
	}

	return cmd
}

func (c *buildCmd) Run(cmd *cobra.Command, cfg build.Configs) error {
	defer flush(cfg.AppTracker)

	if _, err := build.Build(cmd.Context(), cfg); err != nil {
		return fmt.Errorf("running build: %w", err)
	}
	return nil
}
