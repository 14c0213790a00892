package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fablab-reservation-backend/config"
	"fablab-reservation-backend/internal/mw"
	"fablab-reservation-backend/internal/notification"
	"fablab-reservation-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, cfg *config.Config, webpushOptions *webpush.Options, notifier *notification.WorkerPool) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(s, cfg, webpushOptions, notifier)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, cfg.Server.RequestIPHeader)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/machines", caching, GetMachines(db))
		api.GET("/blocked-dates", caching, handler.GetBlockedDates)
		api.POST("/blocked-dates", handler.AddBlockedDate)
		api.DELETE("/blocked-dates", handler.RemoveBlockedDate)

		api.GET("/availability", handler.GetAvailability)

		api.GET("/reservations", handler.ListReservations)
		api.POST("/reservations", handler.CreateReservation)
		api.PATCH("/reservations/:id/status", handler.UpdateReservationStatus)

		api.GET("/reports/usage", caching, handler.GetUsageReport)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
