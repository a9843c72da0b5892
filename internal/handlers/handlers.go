package handlers

import (
	"net/http"
	"time"

	"iptv-relay/internal/logos"
	"iptv-relay/internal/session"
	"iptv-relay/internal/settings"
	"iptv-relay/internal/startup"
)

// userAgent is sent on outbound playlist and text fetches. Several IPTV
// providers reject requests without a browser user agent.
const userAgent = "Mozilla/5.0"

type Handlers struct {
	sessions  *session.Manager
	store     *settings.Store
	logos     *logos.Cache
	client    *http.Client
	startTime time.Time
}

func New(sessions *session.Manager, store *settings.Store, config *startup.Config) *Handlers {
	return &Handlers{
		sessions:  sessions,
		store:     store,
		logos:     logos.NewCache(config.LogoDir, config.LogosEnabled, nil),
		client:    &http.Client{Timeout: 30 * time.Second},
		startTime: time.Now(),
	}
}

// Logos exposes the logo cache for mounting its HTTP handler.
func (h *Handlers) Logos() *logos.Cache {
	return h.logos
}
