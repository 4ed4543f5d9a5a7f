// Seed script that stores a helper and a trickster informant.
// Run with: go run ./scripts/seed.go
package main

import (
	"context"
	"log"

	"github.com/Harshitk-cp/trustmind/internal/bootstrap"
	"github.com/Harshitk-cp/trustmind/internal/config"
	"github.com/Harshitk-cp/trustmind/internal/domain"
	"github.com/Harshitk-cp/trustmind/internal/service"
)

func trials(found bool) []service.Trial {
	var out []service.Trial
	for i := 0; i < 3; i++ {
		out = append(out,
			service.Trial{Hint: domain.SideA, Found: found},
			service.Trial{Hint: domain.SideB, Found: found})
	}
	return out
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := bootstrap.NewLogger(config.LogLevel())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	ctx := context.Background()
	stores, err := bootstrap.OpenStores(ctx, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer stores.Close()

	svc, err := bootstrap.NewTrustService(ctx, stores, bootstrap.TrustOptions(), logger)
	if err != nil {
		log.Fatalf("Failed to load beliefs: %v", err)
	}

	helper, err := svc.Familiarize(ctx, trials(true))
	if err != nil {
		log.Fatalf("Failed to seed helper: %v", err)
	}
	trickster, err := svc.Familiarize(ctx, trials(false))
	if err != nil {
		log.Fatalf("Failed to seed trickster: %v", err)
	}
	if err := svc.Save(ctx); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Seeded helper #%d and trickster #%d (logical time %d)", helper, trickster, svc.Now())
}
