package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/heart/internal/app"
	"github.com/five82/heart/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "heart: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		prefsPath  string
		poll       time.Duration
	)

	options := func(args []string) (app.Options, error) {
		opts := app.Options{
			ConfigPath:   configPath,
			PrefsPath:    prefsPath,
			PollInterval: poll,
			Out:          os.Stdout,
		}
		if len(args) > 0 {
			id, err := config.ParseBeatmapSetID(args[0])
			if err != nil {
				return opts, err
			}
			opts.BeatmapSetID = id
		}
		return opts, nil
	}

	root := &cobra.Command{
		Use:           "heart [beatmapset]",
		Short:         "Favourite an osu! beatmap set from the terminal",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(args)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/heart/config.toml)")
	root.PersistentFlags().StringVar(&prefsPath, "prefs", "", "UI preferences file (default ~/.config/heart/prefs.toml)")
	root.PersistentFlags().DurationVar(&poll, "poll", 0, "session check interval (default from config, 1m)")

	root.AddCommand(&cobra.Command{
		Use:   "status [beatmapset]",
		Short: "Print the favourite state of a beatmap set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(args)
			if err != nil {
				return err
			}
			opts.Out = cmd.OutOrStdout()
			return app.RunStatus(cmd.Context(), opts)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "toggle [beatmapset]",
		Short: "Favourite or unfavourite a beatmap set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(args)
			if err != nil {
				return err
			}
			opts.Out = cmd.OutOrStdout()
			return app.RunToggle(cmd.Context(), opts)
		},
	})
	return root
}
