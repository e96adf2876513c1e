package main

import (
	"io"
	"os"

	"github.com/celer-network/go-eosdeploy/config"
	"github.com/celer-network/go-eosdeploy/log"
	"github.com/celer-network/go-eosdeploy/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

const (
	flagConfig   = "config"
	flagSimulate = "simulate"
	flagFormat   = "format"
	flagMetrics  = "metrics"
)

var (
	logger = log.NewLogger("eosdeploy")
	conf      = config.New()
	collector = metrics.NewCollector()
)

// dumpMetrics writes every gathered family in the Prometheus text format.
func dumpMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "eosdeploy",
		Short:         "deploy and operate EOSIO contracts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := conf.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return config.Read(conf, conf.GetString(flagConfig))
		},
	}

	rootCmd.AddCommand(
		deployCommand(),
		checkCommand(),
		grantCodeCommand(),
		transactCommand(),
		tableCommand(),
		interfaceCommand(),
		historyCommand(),
	)

	rootCmd.PersistentFlags().String(flagConfig, "", "config path (toml, yaml or json)")
	rootCmd.PersistentFlags().Bool(flagSimulate, false, "run against an in-memory chain")
	rootCmd.PersistentFlags().String(flagFormat, "yaml", "output format: yaml or json")
	rootCmd.PersistentFlags().Bool(flagMetrics, false, "print collected metrics to stderr on exit")
	err := rootCmd.Execute()
	if conf.GetBool(flagMetrics) {
		if dumpErr := dumpMetrics(os.Stderr, collector.Registry()); dumpErr != nil {
			logger.Warn().Err(dumpErr).Msg("Failed to dump metrics")
		}
	}
	if err != nil {
		logger.Error().Err(err).Send()
		os.Exit(1)
	}
}
