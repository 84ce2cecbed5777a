// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kamalraji/plan-it-together-sub006/internal/config"
	"github.com/kamalraji/plan-it-together-sub006/internal/handler"
	"github.com/kamalraji/plan-it-together-sub006/internal/middleware"
	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Cfg       config.Config
	Redis     *redis.Client
	Auth      *handler.AuthHandler
	Public    *handler.PublicHandler
	Orders    *handler.OrderHandler
	Waitlist  *handler.WaitlistHandler
	OrgEvents *handler.OrganizerEventHandler
	OrgTiers  *handler.OrganizerTierHandler
	OrgPromos *handler.OrganizerPromoHandler
}

// Register sets up every route of the API.
//
// Public routes carry the Redis rate limiter and, for the tier
// listing, the response cache.  Authenticated routes live under /v1
// behind JWTAuth; organizer routes additionally require the ORGANIZER
// role.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)

	// Unauthenticated surface: auth, catalog browsing, waitlist signup.
	auth := e.Group("/v1/auth", rateLimit)
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	pub := e.Group("/v1", rateLimit)
	pub.GET("/events/:id/tiers", d.Public.ListTiers, cache)
	pub.POST("/events/:id/waitlist", d.Waitlist.Join)

	// Any authenticated user.
	user := e.Group("/v1", middleware.JWTAuth(d.Cfg.JWTSecret),
		middleware.RequireRole(model.RoleOrganizer, model.RoleAttendee))
	user.GET("/me", d.Auth.Me)
	user.POST("/events/:id/orders", d.Orders.CreateOrder)
	user.DELETE("/orders/:id", d.Orders.CancelOrder)
	user.GET("/my-orders", d.Orders.ListMyOrders)

	// Organizer-only management surface.
	org := e.Group("/v1/organizer", middleware.JWTAuth(d.Cfg.JWTSecret),
		middleware.RequireRole(model.RoleOrganizer))
	org.POST("/events", d.OrgEvents.CreateEvent)
	org.GET("/events", d.OrgEvents.ListMyEvents)

	org.GET("/events/:id/tiers", d.OrgTiers.ListTiersDetailed)
	org.POST("/events/:id/tiers", d.OrgTiers.CreateTier)
	org.PUT("/events/:id/tiers/:tierID", d.OrgTiers.UpdateTier)
	org.DELETE("/events/:id/tiers/:tierID", d.OrgTiers.DeactivateTier)

	org.GET("/events/:id/promos", d.OrgPromos.ListPromos)
	org.POST("/events/:id/promos", d.OrgPromos.CreatePromo)
	org.DELETE("/events/:id/promos/:promoID", d.OrgPromos.DeactivatePromo)
	org.POST("/events/:id/preview-price", d.OrgPromos.PreviewPrice)

	org.GET("/events/:id/waitlist", d.Waitlist.List)
	org.POST("/events/:id/waitlist/:entryID/move-up", d.Waitlist.MoveUp)
	org.POST("/events/:id/waitlist/:entryID/move-down", d.Waitlist.MoveDown)
	org.DELETE("/events/:id/waitlist/:entryID", d.Waitlist.Remove)
	org.POST("/events/:id/waitlist/:entryID/promote", d.Waitlist.Promote)
	org.POST("/events/:id/waitlist/promote-batch", d.Waitlist.PromoteBatch)
	org.POST("/events/:id/waitlist/send-invites", d.Waitlist.SendInvites)
}
