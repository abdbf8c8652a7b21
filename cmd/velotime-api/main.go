// Entry point; loads config, wires services, starts the HTTP server and the
// ride monitor.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"velotime/internal/analysis"
	"velotime/internal/config"
	"velotime/internal/estimate"
	httptransport "velotime/internal/http"
	"velotime/internal/infra"
	"velotime/internal/insights"
	"velotime/internal/session"
	"velotime/internal/strava"
	"velotime/internal/traffic"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}

	store := analysis.NewStore(dbPool)
	if err := store.Init(ctx); err != nil {
		log.Fatalf("schema init: %v", err)
	}

	tokens := strava.NewTokenSource(cfg.Strava.ClientID, cfg.Strava.ClientSecret)
	manager := session.NewManager(session.Credential{
		AccessToken:  cfg.Strava.AccessToken,
		RefreshToken: cfg.Strava.RefreshToken,
		ExpiresAt:    cfg.Strava.TokenExpiresAt,
	}, tokens, cfg.Pacing.MinInterval)
	rides := strava.NewClient(manager)

	var provider estimate.Provider
	if cfg.Maps.APIKey != "" {
		gm, err := estimate.NewGoogleMapsProvider(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		redisClient := infra.NewRedis(cfg.Redis.Addr)
		provider = estimate.NewCachedProvider(gm, redisClient, cfg.Redis.EstimateCacheTTL)
	} else {
		log.Printf("GOOGLE_MAPS_API_KEY not set, estimates use the traffic heuristic")
	}
	engine := estimate.NewEngine(provider, traffic.DefaultModel())

	analyzer := analysis.NewService(rides, engine, store, cfg.Monitor.ItemDelay)

	var recap *insights.Generator
	if cfg.Gemini.APIKey != "" {
		recap, err = insights.NewGenerator(ctx, cfg.Gemini.APIKey)
		if err != nil {
			log.Fatalf("gemini init: %v", err)
		}
		defer recap.Close()
	}

	router := httptransport.NewRouter(httptransport.ServerDeps{
		Analysis: analyzer,
		Engine:   engine,
		Insights: recap,
	})

	go analyzer.RunMonitor(ctx, cfg.Monitor.Interval, cfg.Monitor.Lookback)

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
