package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mocap-replay/internal/app"
	"github.com/ayusman/mocap-replay/internal/plugin"
	"github.com/ayusman/mocap-replay/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve run history and stream live flushes over websocket",
		Long: `Start the HTTP server. When a recording is configured it is replayed
once and every flush is broadcast on /api/landmarks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			replay := opts.cfg.Recording != ""
			var sinks []*plugin.Sink
			if replay {
				if err := opts.validate(); err != nil {
					return err
				}
				var err error
				if sinks, err = opts.loadSinks(); err != nil {
					return err
				}
			}

			storePath, err := opts.storePathOrDefault()
			if err != nil {
				return err
			}
			st, err := openStore(storePath)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub := server.NewHub()
			staticDir := opts.cfg.Server.StaticDir
			if staticDir == "" {
				staticDir = findWebDir()
			}
			if staticDir != "" {
				slog.Info("server: serving static files", "dir", staticDir)
			}

			srv := server.New(server.Config{StaticDir: staticDir, Store: st, Hub: hub})
			httpSrv := srv.HTTPServer(opts.cfg.Server.Addr)

			errCh := make(chan error, 1)
			go func() {
				slog.Info("server: listening", "addr", httpSrv.Addr)
				errCh <- httpSrv.ListenAndServe()
			}()

			var session *app.Session
			if replay {
				session = app.NewSession(opts.appConfig(newTracker(st, hub, sinks...)), opts.cfg.TickInterval())
				if _, err := session.Toggle(ctx); err != nil {
					slog.Error("replay: start", "error", err)
				}
			}

			select {
			case <-ctx.Done():
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}

			if session != nil {
				session.Stop()
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		},
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.replay/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".replay", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
