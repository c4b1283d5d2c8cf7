package main

import "github.com/spf13/cobra"

// options holds the root command flags. Anything also present in the
// config file overrides it when set.
type options struct {
	// configPath names an explicit YAML file layered over the user and
	// project files.
	configPath string

	// logLevel overrides log.level.
	logLevel string

	// track picks the starting track by name.
	track string

	// game starts in game mode instead of the visualizer.
	game bool

	// cpuProfile writes a pprof CPU profile for the whole run.
	cpuProfile string

	// debug enables the FPS and session overlay.
	debug bool

	// metricsAddr overrides metrics.addr.
	metricsAddr string

	seed int64
}

func (o *options) bind(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	f := cmd.Flags()
	f.StringVarP(&o.track, "track", "t", "", "Name of the track to start with")
	f.BoolVar(&o.game, "game", false, "Start in game mode")
	f.StringVar(&o.cpuProfile, "cpuprofile", "", "Write a CPU profile to this file")
	f.BoolVar(&o.debug, "debug", false, "Show FPS and session overlay")
	f.StringVar(&o.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	f.Int64Var(&o.seed, "seed", 0, "Random seed for entity behaviour (0 picks one)")
}
