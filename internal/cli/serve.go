package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"enso-settings/internal/store"
	"enso-settings/internal/web"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var open bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the settings UI on a local HTTP server",
		Long: strings.TrimSpace(`
Run the settings UI (commands, category editor, tasks, options, about)
served from a local HTTP server. Pages work without JavaScript; with it,
Datastar patches fragments in place and editors autosave.
`),
		Example: strings.TrimSpace(`
enso-settings serve --addr 127.0.0.1:31752 --open
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}
			enso, err := app.backend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			srv, err := web.NewServer(web.ServerConfig{
				Addr:    listenAddr,
				Backend: enso,
				Memory:  &store.State{Dir: app.Settings.StateDir},
				Log:     app.log,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer srv.Close()

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			opened := false
			openErr := ""
			if open {
				if err := openPath(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}

			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"api":       app.Settings.APIURL,
					"stateDir":  app.Settings.StateDir,
					"opened":    opened,
					"openError": openErr,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": hints,
			})

			app.log.Info().Str("url", url).Str("api", app.Settings.APIURL).Msg("enso settings running")
			if openErr != "" {
				app.log.Warn().Str("error", openErr).Msg("open browser")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serveUntilDone(ctx, ln, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("ENSO_SETTINGS_ADDR", "127.0.0.1:31752"), "Bind address (host:port or :port)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the UI in your default browser")
	return cmd
}

// serveUntilDone serves h on ln and shuts down gracefully when ctx ends.
func serveUntilDone(ctx context.Context, ln net.Listener, h http.Handler) error {
	hs := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
