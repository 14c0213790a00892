package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"fablab-reservation-backend/config"
	"fablab-reservation-backend/internal/notification"
	"fablab-reservation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	cfg      *config.Config
	webpush  *webpush.Options
	notifier *notification.WorkerPool
}

// NewHandler creates a new API handler. The notifier may be nil, in which
// case status changes are not pushed.
func NewHandler(s store.Store, cfg *config.Config, webpushOptions *webpush.Options, notifier *notification.WorkerPool) *Handler {
	return &Handler{
		store:    s,
		cfg:      cfg,
		webpush:  webpushOptions,
		notifier: notifier,
	}
}
