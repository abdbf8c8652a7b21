// One-shot historical capture: estimates car times for past rides and prints
// the running summary. Estimates for old rides use current or heuristic
// traffic, not the traffic of the ride day.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"velotime/internal/analysis"
	"velotime/internal/config"
	"velotime/internal/estimate"
	"velotime/internal/infra"
	"velotime/internal/session"
	"velotime/internal/strava"
	"velotime/internal/traffic"
)

func main() {
	days := flag.Int("days", 30, "how many days back to capture")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

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

	var provider estimate.Provider
	if cfg.Maps.APIKey != "" {
		provider, err = estimate.NewGoogleMapsProvider(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
	}
	engine := estimate.NewEngine(provider, traffic.DefaultModel())

	analyzer := analysis.NewService(strava.NewClient(manager), engine, store, cfg.Monitor.ItemDelay)

	captured, err := analyzer.AnalyzeRecent(ctx, time.Duration(*days)*24*time.Hour)
	if err != nil {
		log.Fatalf("backfill: %v", err)
	}

	sum, err := analyzer.Summary(ctx)
	if err != nil {
		log.Fatalf("summary: %v", err)
	}

	fmt.Printf("captured %d new comparisons\n", captured)
	fmt.Printf("rides compared:  %d\n", sum.Count)
	fmt.Printf("total distance:  %.1f km\n", sum.TotalDistanceMeters/1000)
	fmt.Printf("time saved:      %.1f min total, %.1f min per ride\n",
		sum.TotalTimeSavedSeconds/60, sum.AvgTimeSavedSeconds/60)
	if sum.TotalTimeSavedSeconds < 0 {
		fmt.Println("driving would have been faster overall")
	}
}
