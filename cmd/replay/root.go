package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ayusman/mocap-replay/internal/config"
)

// options holds the resolved configuration shared by all commands.
type options struct {
	configPath string
	verbose    bool
	jsonLogs   bool
	cfg        config.Config

	// flag values, applied over the config file when set
	recording string
	feature   string
	batch     int
	tickMs    int
	storePath string
	addr      string
	pluginDir string
	plugins   []string
}

func newRootCmd() *cobra.Command {
	opts := &options{cfg: config.Default()}

	root := &cobra.Command{
		Use:           "replay",
		Short:         "Replay recorded body, hand and face landmarks",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(opts.verbose, opts.jsonLogs)
			return opts.resolve(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to YAML configuration file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&opts.jsonLogs, "log-json", false, "Write logs as JSON")
	flags.StringVarP(&opts.recording, "recording", "r", "", "Recording to replay (JSON)")
	flags.StringVarP(&opts.feature, "feature", "f", "", "Detection type: HAND, POSE, FACE or HOLISTIC")
	flags.IntVarP(&opts.batch, "batch", "b", 0, "Ticks between flushes")
	flags.IntVar(&opts.tickMs, "tick", 0, "Tick interval in milliseconds")
	flags.StringVar(&opts.storePath, "store", "", "SQLite file for run history")
	flags.StringVar(&opts.addr, "addr", "", "HTTP listen address")
	flags.StringVar(&opts.pluginDir, "plugin-dir", "", "Directory of consumer plugins")
	flags.StringSliceVarP(&opts.plugins, "plugin", "p", nil, "Consumer plugin to feed with every flush (repeatable)")

	root.AddCommand(
		newRunCmd(opts),
		newServeCmd(opts),
		newTrayCmd(opts),
		newRunsCmd(opts),
	)
	return root
}

// resolve loads the config file, if any, and applies flags that were set.
func (o *options) resolve(cmd *cobra.Command) error {
	if o.configPath != "" {
		cfg, err := config.Read(o.configPath)
		if err != nil {
			return err
		}
		o.cfg = cfg
	}

	flags := cmd.Flags()
	if flags.Changed("recording") {
		o.cfg.Recording = o.recording
	}
	if flags.Changed("feature") {
		o.cfg.Feature = o.feature
	}
	if flags.Changed("batch") {
		o.cfg.BatchInterval = o.batch
	}
	if flags.Changed("tick") {
		o.cfg.TickIntervalMs = o.tickMs
	}
	if flags.Changed("store") {
		o.cfg.StorePath = o.storePath
	}
	if flags.Changed("addr") {
		o.cfg.Server.Addr = o.addr
	}
	if flags.Changed("plugin-dir") {
		o.cfg.Plugins.Dir = o.pluginDir
	}
	if flags.Changed("plugin") {
		o.cfg.Plugins.Enabled = o.plugins
	}
	return nil
}

// validate checks the settings needed to start a replay.
func (o *options) validate() error {
	return config.Validate(&o.cfg)
}

// storePathOrDefault returns the configured store path, falling back to
// ~/.replay/replay.db for commands that always keep history.
func (o *options) storePathOrDefault() (string, error) {
	if o.cfg.StorePath != "" {
		return o.cfg.StorePath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(homeDir, ".replay")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "replay.db"), nil
}

func setupLogging(verbose, json bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}
