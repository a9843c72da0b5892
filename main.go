package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"iptv-relay/internal/handlers"
	"iptv-relay/internal/logging"
	"iptv-relay/internal/metrics"
	"iptv-relay/internal/middleware"
	"iptv-relay/internal/relay"
	"iptv-relay/internal/session"
	"iptv-relay/internal/settings"
	"iptv-relay/internal/startup"
	"iptv-relay/internal/transcoder"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Pre-populate metric label combinations
	metrics.InitializeMetrics()

	// Initialize settings store
	storeStart := time.Now()
	store, err := settings.New(context.Background(), config.SettingsPath)
	if err != nil {
		startup.LogFatal("Failed to initialize settings store: %v", err)
	}
	defer store.Close()
	startup.LogSettingsInit(time.Since(storeStart))

	// Initialize transcoder
	startup.LogTranscoderInit(config.FFmpegPath)
	transCfg := transcoder.DefaultConfig()
	transCfg.FFmpegPath = config.FFmpegPath
	transCfg.AudioBitrate = config.AudioBitrate
	transCfg.AudioChannels = config.AudioChannels
	transCfg.ReconnectDelayMax = config.ReconnectDelayMax
	trans := transcoder.New(transCfg)

	// Initialize relay server and session manager
	srv := relay.New(relay.Config{
		Host:   config.RelayHost,
		Port:   config.RelayPort,
		HLSDir: config.HLSDir,
	})
	sessions := session.NewManager(srv, session.StarterFunc(func(sourceURL string) (session.Process, error) {
		return trans.Start(sourceURL)
	}))

	// Initialize handlers and mount the control API
	h := handlers.New(sessions, store, config)
	setupRouter(srv.Router(), h)

	// Log routes dynamically
	startup.LogHTTPRoutes(srv.Router(), config.LogStaticFiles, config.LogHealthChecks)

	// Apply middleware: CORS outermost so even error responses carry the
	// headers the player UI needs.
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.CORS(
		middleware.Logger(loggingConfig)(
			middleware.Metrics(middleware.DefaultMetricsConfig())(srv.Router())))
	srv.SetHandler(handler)

	// The relay listener itself starts lazily with the first stream, but
	// the control API must be reachable immediately.
	if err := srv.EnsureStarted(); err != nil {
		startup.LogFatal("Failed to start relay server: %v", err)
	}

	// Metrics server on its own port so scrapes never touch the relay
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         "localhost:" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	startup.LogServerStarted(startup.ServerConfig{
		RelayURL:        srv.BaseURL(),
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	handleShutdown(srv, metricsSrv, sessions)
}

func setupRouter(r *mux.Router, h *handlers.Handlers) {
	// Health and version endpoints
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Control API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/fetch", h.FetchText).Methods("GET")
	api.HandleFunc("/stream/proxy", h.ProxyStream).Methods("POST")
	api.HandleFunc("/stream/stop", h.StopProxy).Methods("POST")
	api.HandleFunc("/stream/status", h.StreamStatus).Methods("GET")
	api.HandleFunc("/playlist/load", h.LoadPlaylist).Methods("POST")
	api.HandleFunc("/playlist/channels", h.GetChannels).Methods("GET")
	api.HandleFunc("/settings", h.ListSettings).Methods("GET")
	api.HandleFunc("/settings/{key}", h.GetSetting).Methods("GET")
	api.HandleFunc("/settings/{key}", h.PutSetting).Methods("PUT")
	api.HandleFunc("/settings/{key}", h.DeleteSetting).Methods("DELETE")

	// Channel logos
	if h.Logos().IsEnabled() {
		r.PathPrefix("/logos/").Handler(h.Logos().Handler()).Methods("GET")
	}
}

func handleShutdown(srv *relay.Server, metricsSrv *http.Server, sessions *session.Manager) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping active session")
	sessions.Shutdown()
	startup.LogShutdownStepComplete("Session stopped")

	startup.LogShutdownStep("Shutting down relay server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Relay server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Relay server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
