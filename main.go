// Package main provides the beatsprite binary: an audio-reactive particle
// visualizer that plays a track list and draws sprites driven by the
// spectrum, with an optional game mode.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/spf13/cobra"

	beataudio "beatsprite/internal/audio"
	"beatsprite/internal/config"
	"beatsprite/internal/feed"
	"beatsprite/internal/metrics"
	"beatsprite/internal/session"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Audio-reactive particle visualizer",
		Long: `Beatsprite plays a list of tracks and draws bars, emitters, projectiles
and curves that react to the live spectrum and waveform.

Press M for game mode, Space to play or pause, 1-6 to change colours.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	opts.bind(cmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})
	cmd.AddCommand(tracksCmd(&opts))

	return cmd
}

func tracksCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks",
		Short: "List the resolved tracks and their scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(nil).Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			tracks, err := cfg.ResolveTracks()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, t := range tracks {
				fmt.Fprintf(out, "%3d  %-24s %-14s %s\n", i+1, t.Name, t.Scene, t.Path)
			}
			return nil
		},
	}
}

// newLogger builds the stderr text logger. An explicit level wins over the
// configured one.
func newLogger(cfg config.LogConfig, override string) (*slog.Logger, error) {
	if override != "" {
		cfg.Level = override
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func run(ctx context.Context, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(nil)
	cfg, err := loader.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg.Log, opts.logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if opts.cpuProfile != "" {
		stopProfile, err := startCPUProfile(opts.cpuProfile)
		if err != nil {
			return err
		}
		defer stopProfile()
		logger.Info("CPU profiling enabled", slog.String("path", opts.cpuProfile))
	}

	resolved, err := cfg.ResolveTracks()
	if err != nil {
		return err
	}
	tracks := make([]session.Track, len(resolved))
	for i, t := range resolved {
		tracks[i] = session.Track{Name: t.Name, Path: t.Path, Scene: t.Scene}
	}
	start, err := startTrack(tracks, opts.track)
	if err != nil {
		return err
	}

	params, err := cfg.Visual.Params()
	if err != nil {
		return err
	}

	m := metrics.New()
	if addr := firstNonEmpty(opts.metricsAddr, cfg.Metrics.Addr); addr != "" {
		go func() {
			if err := m.Serve(ctx, addr, logger); err != nil {
				logger.Error("Metrics server failed", slog.String("error", err.Error()))
			}
		}()
	}

	tap := feed.NewTap(feed.TapConfig{
		FFTSize:   cfg.Audio.FFTSize,
		Smoothing: cfg.Audio.Smoothing,
		MinDB:     cfg.Audio.MinDB,
		MaxDB:     cfg.Audio.MaxDB,
	})
	chain := beataudio.NewChain(cfg.Audio.SampleRate, tap)
	chain.SetLowshelf(cfg.Audio.Lowshelf)
	chain.SetHighshelf(cfg.Audio.Highshelf)
	chain.SetDistortion(cfg.Audio.Distortion)
	deck := beataudio.NewDeck(audio.NewContext(cfg.Audio.SampleRate), chain, logger)
	defer deck.Close()
	deck.SetVolume(cfg.Audio.Volume)

	sess, err := session.New(session.Options{
		Width:         cfg.Window.Width,
		Height:        cfg.Window.Height,
		TransformSize: cfg.Audio.FFTSize,
		Params:        params,
		Seed:          opts.seed,
		Game:          opts.game,
		Logger:        logger,
		Metrics:       m,
	}, tap, deck, tracks)
	if err != nil {
		return err
	}
	if start != 0 {
		if err := sess.SelectTrack(start); err != nil {
			return err
		}
	}

	g := newGame(sess, deck, cfg, logger, opts.debug)

	if path := loader.WatchPath(opts.configPath); path != "" {
		watcher, err := config.NewWatcher(path, config.DefaultDebounce, func() (*config.Config, error) {
			return loader.Load(opts.configPath)
		}, logger)
		if err != nil {
			logger.Warn("Config watching disabled", slog.String("error", err.Error()))
		} else {
			defer watcher.Close()
			if err := watcher.Start(ctx); err != nil {
				logger.Warn("Config watching disabled", slog.String("error", err.Error()))
			} else {
				g.updates = watcher.Updates()
			}
		}
	}
	go func() {
		<-ctx.Done()
		g.quit.Store(true)
	}()

	ebiten.SetWindowSize(windowSize(cfg.Window))
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(int(defaultTPS))

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// startTrack returns the index of the track called name, or 0 when name is
// empty.
func startTrack(tracks []session.Track, name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	for i, t := range tracks {
		if t.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("track %q not found", name)
}

// windowSize scales the canvas to the initial window size, at least one
// pixel per axis.
func windowSize(w config.WindowConfig) (int, int) {
	scale := func(n int) int {
		return max(1, int(math.Round(float64(n)*w.Scale)))
	}
	return scale(w.Width), scale(w.Height)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
