package cmd

import (
	"fmt"
	"os"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/icebreaker/library/config"
	"github.com/Laisky/icebreaker/library/log"
)

var rootCMD = &cobra.Command{
	Use:   "icebreaker",
	Short: "icebreaker",
	Long:  `generate personalized LinkedIn connection messages from a web search`,
	Args:  gcmd.NoExtraArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func initialize(cmd *cobra.Command) error {
	if err := gconfig.Shared.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "bind pflags")
	}

	if gconfig.Shared.GetBool("debug") {
		gconfig.Shared.Set("log-level", "debug")
	}

	envFile := gconfig.Shared.GetString("env-file")
	if err := config.LoadEnvFile(envFile, cmd.Flags().Changed("env-file")); err != nil {
		return errors.Wrap(err, "load env file")
	}

	if err := config.LoadFromFile(gconfig.Shared.GetString("config")); err != nil {
		return errors.Wrap(err, "load configuration")
	}

	if err := validateStartupConfig(); err != nil {
		return errors.Wrap(err, "validate startup configuration")
	}

	lvl := gconfig.Shared.GetString("log-level")
	if err := log.Logger.ChangeLevel(glog.Level(lvl)); err != nil {
		return errors.Wrapf(err, "change log level to %q", lvl)
	}

	log.Logger.Debug("initialized", zap.String("command", cmd.Name()))
	return nil
}

func init() {
	rootCMD.PersistentFlags().Bool("debug", false, "run in debug mode")
	rootCMD.PersistentFlags().StringP("config", "c", "", "optional YAML settings file path")
	rootCMD.PersistentFlags().String("env-file", config.DefaultEnvFile, "dotenv file with OPENAI_API_KEY and SERPAPI_API_KEY")
	rootCMD.PersistentFlags().String("log-level", "info", "`debug/info/warn/error`")
}

// Execute execute root command
func Execute() {
	if err := rootCMD.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
