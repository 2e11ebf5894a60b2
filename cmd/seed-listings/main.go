package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/pgstay/api/internal/business/listing"
	"github.com/pgstay/api/internal/platform/config"
	"github.com/pgstay/api/internal/platform/firebase"
	"github.com/pgstay/api/internal/repository"
	"github.com/pgstay/api/internal/seed"
)

func main() {
	owner := flag.String("owner", seed.SampleOwnerID, "owner uid recorded on the sample listings")
	force := flag.Bool("force", false, "overwrite sample listings that already exist")
	dryRun := flag.Bool("dry-run", false, "print what would be written without writing")
	flag.Parse()

	ctx := context.Background()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	clients, err := firebase.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Firebase clients: %v", err)
	}
	defer clients.Close()

	log.Printf("Connected to Firestore project %s using %s credentials", cfg.FirebaseProjectID, clients.CredsSource)

	repo := repository.NewListingRepository(clients.Firestore)
	existing, err := repo.FetchAll(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch listings: %v", err)
	}
	have := make(map[string]bool, len(existing))
	for _, l := range existing {
		have[l.ID] = true
	}

	now := time.Now().UTC()
	var pending []string
	samples := seed.Listings()
	toWrite := samples[:0]
	for _, l := range samples {
		if have[l.ID] && !*force {
			fmt.Printf("  skip %s (%s): already exists\n", l.ID, l.Title)
			continue
		}
		l.OwnerID = *owner
		l.CreatedAt = now
		l.UpdatedAt = now
		toWrite = append(toWrite, l)
		pending = append(pending, l.ID)
	}

	fmt.Printf("Seeding %d of %d sample listings %v\n", len(toWrite), len(samples), pending)
	if *dryRun || len(toWrite) == 0 {
		return
	}

	if err := repo.BatchUpsert(ctx, toWrite); err != nil {
		log.Fatalf("Failed to write listings: %v", err)
	}

	all, err := repo.FetchAll(ctx)
	if err != nil {
		log.Fatalf("Failed to re-read listings: %v", err)
	}
	stats := listing.AggregateCatalogStats(all)
	if err := repository.NewStatsRepository(clients.Firestore).SaveCatalogStats(ctx, stats); err != nil {
		log.Fatalf("Failed to save stats: %v", err)
	}
	fmt.Printf("Done: %d listings in catalog, %d verified\n", stats.TotalListings, stats.TotalVerified)
}
