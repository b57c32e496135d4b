package cmd

import (
	"fmt"
	"go/types"

	"github.com/spf13/cobra"
	"github.com/stellar/go/support/config"
	"github.com/stellar/go/support/log"

	"github.com/real-comp/mvr-common/cmd/utils"
	"github.com/real-comp/mvr-common/internal/apptracker"
	"github.com/real-comp/mvr-common/internal/build"
)

type cassCmd struct{}

func (c *cassCmd) Command() *cobra.Command {
	cassCmd := &cobra.Command{
		Use:   "cass",
		Short: "Prepare addresses for CASS standardization and merge the standardized addresses back",
	}
	cassCmd.AddCommand(c.inputCommand())
	cassCmd.AddCommand(c.mergeCommand())
	return cassCmd
}

// preRunE sets the log level and resolves the app tracker once the options are parsed.
func preRunE(cfgOpts config.ConfigOptions, common *build.CommonConfigs, trackerOpts *utils.AppTrackerOptions, command string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := utils.DefaultPersistentPreRunE(cfgOpts)(cmd, args); err != nil {
			return err
		}
		log.DefaultLogger.SetLevel(common.LogLevel)

		appTracker, err := utils.AppTrackerResolver(*trackerOpts, command)
		if err != nil {
			return fmt.Errorf("initializing App Tracker: %w", err)
		}
		common.AppTracker = appTracker
		return nil
	}
}

func (c *cassCmd) inputCommand() *cobra.Command {
	cfg := build.CassInputConfigs{}
	trackerOpts := utils.AppTrackerOptions{}

	cfgOpts := utils.CommonOptions(&cfg.LogLevel, &trackerOpts, &cfg.MetricsAddr)
	cfgOpts = append(cfgOpts,
		utils.InputsOption(&cfg.Inputs, "Transaction record files."),
		utils.OutputOption(&cfg.Output, "Raw address record file."),
		&config.ConfigOption{
			Name:        "assign-ids",
			Usage:       "Assign slot ids to raw addresses that have none before extracting them.",
			OptType:     types.Bool,
			ConfigKey:   &cfg.AssignIDs,
			FlagDefault: false,
			Required:    false,
		},
	)

	cmd := &cobra.Command{
		Use:               "input",
		Short:             "Write the raw addresses of transactions for standardization",
		PersistentPreRunE: preRunE(cfgOpts, &cfg.CommonConfigs, &trackerOpts, build.CommandCassInput),
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer flush(cfg.AppTracker)
			if _, err := build.CassInput(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("running cass input: %w", err)
			}
			return nil
		},
	}

	if err := cfgOpts.Init(cmd); err != nil {
		log.Fatalf("Error initializing a config option: %s", err.Error())
	}
	return cmd
}

func (c *cassCmd) mergeCommand() *cobra.Command {
	cfg := build.CassMergeConfigs{}
	trackerOpts := utils.AppTrackerOptions{}

	cfgOpts := utils.CommonOptions(&cfg.LogLevel, &trackerOpts, &cfg.MetricsAddr)
	cfgOpts = append(cfgOpts,
		utils.InputsOption(&cfg.Inputs, "Transaction record files, sorted by transaction id."),
		utils.OutputOption(&cfg.Output, "Transaction record file with the standardized addresses applied."),
		&config.ConfigOption{
			Name:           "cass",
			Usage:          `Standardized address record files, sorted by address id. Comma-separated list of ".json" or ".json.gz" files.`,
			OptType:        types.String,
			CustomSetValue: utils.SetConfigOptionRecordFiles,
			ConfigKey:      &cfg.Addresses,
			Required:       true,
		},
	)

	cmd := &cobra.Command{
		Use:               "merge",
		Short:             "Apply standardized addresses to transactions",
		PersistentPreRunE: preRunE(cfgOpts, &cfg.CommonConfigs, &trackerOpts, build.CommandCassMerge),
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer flush(cfg.AppTracker)
			if _, err := build.CassMerge(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("running cass merge: %w", err)
			}
			return nil
		},
	}

	if err := cfgOpts.Init(cmd); err != nil {
		log.Fatalf("Error initializing a config option: %s", err.Error())
	}
	return cmd
}

func flush(tracker apptracker.AppTracker) {
	if tracker != nil {
		tracker.Flush()
	}
}
