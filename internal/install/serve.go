package install

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultAddr is where the receiver listens; Install forms post here.
const DefaultAddr = "localhost:31750"

// Serve runs the receiver on addr and the installer worker until ctx is
// done or one of them fails.
func Serve(ctx context.Context, addr string, in *Installer, log zerolog.Logger) error {
	if addr == "" {
		addr = DefaultAddr
	}
	rc, err := NewReceiver(in, log)
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: addr, Handler: rc, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("install receiver listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return in.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
