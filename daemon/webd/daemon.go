package webd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/jellydator/ttlcache/v3"
	"github.com/olahol/melody"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotblauer/catspeak/alert"
	"github.com/rotblauer/catspeak/locate"
	"github.com/rotblauer/catspeak/metrics"
	"github.com/rotblauer/catspeak/params"
	"github.com/rotblauer/catspeak/state"
	"github.com/rotblauer/catspeak/tracker"
	"github.com/rotblauer/catspeak/types/settings"
)

// WebDaemon is the display and settings surface.
type WebDaemon struct {
	Config *params.WebDaemonConfig

	tracker    *tracker.Tracker
	store      *state.SettingsStore
	feed       *locate.Feed
	dispatcher *alert.Dispatcher
	meters     *metrics.Meters

	// settingsMu guards settings, the record in effect.
	// It keeps an edit even when the store fails to persist it.
	settingsMu sync.Mutex
	settings   settings.AppSettings

	started        time.Time
	melodyInstance *melody.Melody
	recent         *ttlcache.Cache[uint64, alert.Event]
	logger         *slog.Logger
}

// Deps are the components the daemon displays and drives.
// Feed and Meters may be nil.
type Deps struct {
	Tracker    *tracker.Tracker
	Store      *state.SettingsStore
	Feed       *locate.Feed
	Dispatcher *alert.Dispatcher
	Meters     *metrics.Meters
}

func NewWebDaemon(config *params.WebDaemonConfig, deps Deps, current settings.AppSettings) (*WebDaemon, error) {
	if config == nil {
		config = params.DefaultWebDaemonConfig()
	}
	if deps.Tracker == nil || deps.Store == nil || deps.Dispatcher == nil {
		return nil, errors.New("webd: tracker, store and dispatcher are required")
	}
	s := &WebDaemon{
		Config:     config,
		tracker:    deps.Tracker,
		store:      deps.Store,
		feed:       deps.Feed,
		dispatcher: deps.Dispatcher,
		meters:     deps.Meters,
		settings:   current.Clone(),
		started:    time.Now(),
		recent: ttlcache.New[uint64, alert.Event](
			ttlcache.WithTTL[uint64, alert.Event](params.CacheRecentAlertsTTL),
			ttlcache.WithCapacity[uint64, alert.Event](params.CacheRecentAlertsCap),
		),
		logger: slog.With("d", "web"),
	}
	s.initMelody()
	return s, nil
}

func (s *WebDaemon) currentSettings() settings.AppSettings {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	return s.settings.Clone()
}

// Run serves until ctx is done, then shuts the server down.
func (s *WebDaemon) Run(ctx context.Context) error {
	ln, err := net.Listen(s.Config.Network, s.Config.Address)
	if err != nil {
		return fmt.Errorf("listen %s %s: %w", s.Config.Network, s.Config.Address, err)
	}
	return s.Serve(ctx, ln)
}

func (s *WebDaemon) Serve(ctx context.Context, ln net.Listener) error {
	stopRelay := s.startRelay()
	defer stopRelay()
	go s.recent.Start()
	defer s.recent.Stop()

	server := &http.Server{
		Handler:           s.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "network", ln.Addr().Network(), "address", ln.Addr().String())
		errs <- server.Serve(ln)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.melodyInstance.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *WebDaemon) NewRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(false)
	router.Use(s.loggingMiddleware)

	// Websocket.
	router.Path("/socat").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = s.melodyInstance.HandleRequest(w, r)
	})

	apiRoutes := router.NewRoute().Subrouter()

	// All API routes use permissive CORS settings.
	apiRoutes.Use(permissiveCorsMiddleware)

	// /ping is a simple server healthcheck endpoint
	apiRoutes.Path("/ping").HandlerFunc(pingPong)

	if s.meters != nil {
		apiRoutes.Path("/metrics").Handler(promhttp.HandlerFor(s.meters.PrometheusRegistry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	apiJSONRoutes := apiRoutes.NewRoute().Subrouter()
	apiJSONRoutes.Use(contentTypeMiddlewareFunc("application/json"))

	apiJSONRoutes.Path("/status").HandlerFunc(s.statusReport).Methods(http.MethodGet)
	apiJSONRoutes.Path("/speed").HandlerFunc(s.handleSpeed).Methods(http.MethodGet)
	apiJSONRoutes.Path("/settings").HandlerFunc(s.handleGetSettings).Methods(http.MethodGet)
	apiJSONRoutes.Path("/settings/form").HandlerFunc(s.handleGetSettingsForm).Methods(http.MethodGet)

	authenticated := apiJSONRoutes.NewRoute().Subrouter()
	authenticated.Use(s.tokenAuthenticationMiddleware)

	authenticated.Path("/settings").HandlerFunc(s.handlePutSettings).Methods(http.MethodPut)
	authenticated.Path("/settings/form").HandlerFunc(s.handlePostSettingsForm).Methods(http.MethodPost)
	authenticated.Path("/populate/").HandlerFunc(s.handlePopulate).Methods(http.MethodPost)
	authenticated.Path("/populate").HandlerFunc(s.handlePopulate).Methods(http.MethodPost)

	return router
}
