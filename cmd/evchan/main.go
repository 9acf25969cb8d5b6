package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/baxromumarov/evchan/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:               "evchan",
	Short:             "evchan - stream events through a buffered event channel",
	PersistentPreRunE: before,
	SilenceUsage:      true,
}

// Flag values. Only flags set on the command line override the config file.
var (
	configPath string
	flagValues = config.Default()

	cfg config.Config
	log = logrus.New()
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&flagValues.LogLevel, "log-level", flagValues.LogLevel, "Log messages including and over the specified level: debug, info, warn, error")
	pf.StringVar(&flagValues.LogFormat, "log-format", flagValues.LogFormat, "Log format: text or json")
	pf.StringVar(&flagValues.MetricsAddr, "metrics-addr", flagValues.MetricsAddr, "Serve Prometheus metrics on this address, e.g. :9100")

	rootCmd.AddCommand(tailCmd, versionCmd)
}

func before(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd.Flags(), &loaded, flagValues)
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	return setupLogger(log, cfg, cmd.ErrOrStderr())
}

// applyFlags copies into cfg the values of the flags that were set on the
// command line.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config, from config.Config) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("buffer", func() { cfg.Buffer = from.Buffer })
	set("size", func() { cfg.Size = from.Size })
	set("match", func() { cfg.Match = from.Match })
	set("follow", func() { cfg.Follow = from.Follow })
	set("from-end", func() { cfg.FromEnd = from.FromEnd })
	set("poll", func() { cfg.Poll = from.Poll })
	set("metrics-addr", func() { cfg.MetricsAddr = from.MetricsAddr })
	set("log-level", func() { cfg.LogLevel = from.LogLevel })
	set("log-format", func() { cfg.LogFormat = from.LogFormat })
}

func setupLogger(l *logrus.Logger, cfg config.Config, out io.Writer) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	l.SetLevel(level)
	l.SetOutput(out)

	if cfg.LogFormat == config.FormatJSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
