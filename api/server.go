// Package api exposes the dispatcher over HTTP: the fleet snapshot, hall
// calls and the trip log.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/liftbank/api/cars"
	"github.com/kilianp07/liftbank/api/trips"
	"github.com/kilianp07/liftbank/core/triplog"
	"github.com/kilianp07/liftbank/infra/logger"
)

// Options selects the routes mounted by NewMux. Trips may be nil.
type Options struct {
	Fleet cars.Fleet
	Trips triplog.Store
	Token string
}

// NewMux mounts /api/cars, /api/calls and, when a store is given, /api/trips.
func NewMux(o Options) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/cars", cars.NewStatusHandler(o.Fleet))
	mux.Handle("/api/calls", cars.NewCallHandler(o.Fleet))
	if o.Trips != nil {
		mux.Handle("/api/trips", trips.NewTripHandler(o.Trips, o.Token))
	}
	return mux
}

// Serve runs h on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	log := logger.New("api")
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("api server shutdown: %v", err)
		}
		cancel()
	}()
	log.Infof("serving api on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
