package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/mocap-replay/internal/app"
	"github.com/ayusman/mocap-replay/internal/chain"
	"github.com/ayusman/mocap-replay/internal/tui"
)

func newRunCmd(opts *options) *cobra.Command {
	var useTUI, quiet bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a recording once",
		Long: `Replay a recording at the configured tick rate until it is exhausted.
Ctrl+C stops the run. With --tui, q or Esc cancels it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}

			st, err := openStore(opts.cfg.StorePath)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sinks, err := opts.loadSinks()
			if err != nil {
				return err
			}
			t := newTracker(st, nil, sinks...)

			var (
				progress *app.Progress
				extra    []chain.Stage
			)
			if !useTUI && !quiet {
				progress = app.NewProgress(cmd.ErrOrStderr())
				extra = append(extra, progress)
			}

			cfg := opts.appConfig(t, extra...)
			onStart := cfg.OnStart
			cfg.OnStart = func(sum app.Summary) {
				onStart(sum)
				if progress != nil {
					progress.SetTotal(sum.Total)
				}
			}

			c := app.New(cfg)
			if err := c.Start(); err != nil {
				return err
			}

			if useTUI {
				if _, err := tui.Run(ctx, c, opts.cfg.TickInterval()); err != nil {
					return err
				}
			} else {
				app.Drive(ctx, c, opts.cfg.TickInterval(), nil)
			}

			if progress != nil {
				progress.Finish()
			}

			sum := c.Summary()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", sum.RunID, describe(sum))
			return nil
		},
	}

	cmd.Flags().BoolVar(&useTUI, "tui", false, "Show the replay in a terminal UI")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not draw a progress bar")
	return cmd
}
