package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"bobina-estoque-backend/internal/mw"
	"bobina-estoque-backend/internal/store"
	"bobina-estoque-backend/internal/transfer"
)

// RouterOptions tunes the middleware applied to the API group.
type RouterOptions struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

func (o RouterOptions) withDefaults() RouterOptions {
	if o.RateLimitPerSec <= 0 {
		o.RateLimitPerSec = 10
	}
	if o.RateLimitBurst <= 0 {
		o.RateLimitBurst = 5
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = time.Minute
	}
	return o
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, coordinator *transfer.Coordinator, webpushOptions *webpush.Options, opts RouterOptions) *gin.Engine {
	opts = opts.withDefaults()
	r := gin.Default()

	handler := NewHandler(s, coordinator, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(opts.RateLimitPerSec), opts.RateLimitBurst)

	cacheStore := cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	caching := mw.Cache(cacheStore, opts.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/reels", handler.ListReels)
		api.POST("/reels", handler.CreateReel)
		api.GET("/reels/:id", handler.GetReel)
		api.PUT("/reels/:id", handler.UpdateReel)
		api.DELETE("/reels/:id", handler.DeleteReel)

		api.GET("/machines", handler.ListMachines)
		api.POST("/machines", handler.CreateMachine)
		api.GET("/machines/:id", handler.GetMachine)
		api.PUT("/machines/:id", handler.UpdateMachine)
		api.DELETE("/machines/:id", handler.DeleteMachine)

		api.POST("/transfers", handler.CreateTransfer)
		api.GET("/history", handler.GetHistory)

		// The dashboard is aggregate-only and cheap to serve stale.
		api.GET("/dashboard", caching, handler.GetDashboard)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
