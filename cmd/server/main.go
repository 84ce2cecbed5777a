package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/kamalraji/plan-it-together-sub006/internal/config"
	"github.com/kamalraji/plan-it-together-sub006/internal/database"
	"github.com/kamalraji/plan-it-together-sub006/internal/handler"
	"github.com/kamalraji/plan-it-together-sub006/internal/queue"
	"github.com/kamalraji/plan-it-together-sub006/internal/repository"
	"github.com/kamalraji/plan-it-together-sub006/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: caching and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	tiers := repository.NewTierRepo(db)
	promos := repository.NewPromoRepo(db)
	orders := repository.NewOrderRepo(db)
	waitlist := repository.NewWaitlistRepo(db)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Cfg:       cfg,
		Redis:     rdb,
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		Public:    handler.NewPublicHandler(events, tiers),
		Orders:    handler.NewOrderHandler(events, tiers, promos, orders),
		Waitlist:  handler.NewWaitlistHandler(events, tiers, waitlist),
		OrgEvents: handler.NewOrganizerEventHandler(events),
		OrgTiers:  handler.NewOrganizerTierHandler(events, tiers),
		OrgPromos: handler.NewOrganizerPromoHandler(events, tiers, promos),
	})

	// Background consumer turning waitlist.invited messages into the
	// invite log.  It reconnects forever on its own.
	go func() {
		if err := queue.StartInviteConsumer(cfg.InviteLogPath); err != nil {
			log.Printf("invite consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
