package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/joho/godotenv"
	"github.com/pgstay/api/internal/business/query"
	"github.com/pgstay/api/internal/platform/config"
	"github.com/pgstay/api/internal/platform/firebase"
	"github.com/pgstay/api/internal/repository"
)

func main() {
	id := flag.String("id", "", "listing document id")
	flag.Parse()
	if *id == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	l, err := repository.NewListingRepository(clients.Firestore).Get(ctx, *id)
	if errors.Is(err, repository.ErrNotFound) {
		fmt.Printf("Listing %s: DOES NOT EXIST in Firestore\n", *id)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Failed to get listing: %v", err)
	}

	jsonData, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal: %v", err)
	}
	fmt.Println("Full listing data:")
	fmt.Println(string(jsonData))

	// Fields the browse view depends on.
	fmt.Printf("\n=== Browse field checks ===\n")
	fmt.Printf("Owner: %q\n", l.OwnerID)
	fmt.Printf("Verification document on file: %v\n", l.VerificationDocURL != "")
	fmt.Printf("Gender tag: %q\n", l.GenderTag)
	if d := query.ParseDistance(l.Distance); math.IsInf(d, 1) {
		fmt.Printf("Distance %q: NOT PARSEABLE, sorts last\n", l.Distance)
	} else {
		fmt.Printf("Distance %q: %.2f\n", l.Distance, d)
	}
	if l.Price < query.DefaultMinRent || l.Price > query.DefaultMaxRent {
		fmt.Printf("Price %d: outside the default rent range, hidden until the student widens it\n", l.Price)
	}
}
