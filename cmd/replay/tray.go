package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mocap-replay/internal/app"
	"github.com/ayusman/mocap-replay/internal/server"
	"github.com/ayusman/mocap-replay/internal/tray"
)

func newTrayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tray",
		Short: "Run from the system tray with a start/stop toggle",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
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

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			hub := server.NewHub()
			httpSrv := server.New(server.Config{StaticDir: findWebDir(), Store: st, Hub: hub}).HTTPServer(opts.cfg.Server.Addr)
			go func() {
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("server: listen", "addr", httpSrv.Addr, "error", err)
				}
			}()

			sinks, err := opts.loadSinks()
			if err != nil {
				return err
			}

			tr := tray.New()
			t := newTracker(st, hub, sinks...)
			cfg := opts.appConfig(t)
			onTerminate := cfg.OnTerminate
			cfg.OnTerminate = func(sum app.Summary) {
				onTerminate(sum)
				tr.Refresh()
				tr.SetLastRun(describe(sum))
			}
			session := app.NewSession(cfg, opts.cfg.TickInterval())
			tr.OnStatus(session.Active)

			tr.OnToggle(func() (bool, error) {
				return session.Toggle(ctx)
			})
			tr.OnOpen(func() {
				openBrowser(browserURL(opts.cfg.Server.Addr))
			})
			tr.OnQuit(func() {
				session.Stop()
				cancel()
			})

			tr.Run()

			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			return httpSrv.Shutdown(shutdownCtx)
		},
	}
}

func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Warn("tray: open browser", "url", url, "error", err)
	}
}
