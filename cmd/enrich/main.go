package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"steamshelf/internal/metadata"
	"steamshelf/pkg/database"
	"steamshelf/pkg/utils"
)

// Warms the metadata cache for a list of Steam appids, given as
// arguments or one-per-line on stdin with -stdin.
func main() {
	fs := flag.NewFlagSet("enrich", flag.ExitOnError)
	fromStdin := fs.Bool("stdin", false, "read appids from stdin, one per line")
	timeout := fs.Duration("timeout", 5*time.Minute, "overall timeout")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !cfg.EnrichmentEnabled() {
		log.Fatal("IGDB_CLIENT_ID and IGDB_CLIENT_SECRET are required")
	}

	appIDs, err := collectAppIDs(fs.Args(), *fromStdin)
	if err != nil {
		log.Fatalf("read appids: %v", err)
	}
	if len(appIDs) == 0 {
		log.Fatal("no appids given")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db := database.MustOpen(database.Config{Path: cfg.DBPath})
	defer db.Close()

	if err := database.Migrate(db, cfg.SchemaPath); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	tokens := metadata.NewTokenSource(cfg.IGDBClientID, cfg.IGDBClientSecret, cfg.IGDBTimeout)
	enricher := metadata.NewIGDBClient(cfg.IGDBClientID, tokens, cfg.IGDBTimeout)
	fetcher := metadata.NewFetcher(metadata.NewRepo(db), enricher)

	result := fetcher.EnsureMetadata(ctx, appIDs)
	if result.PersistErr != nil {
		log.Printf("cache write failed: %v", result.PersistErr)
	}

	log.Printf("metadata available for %d of %d appids", len(result.Records), len(appIDs))
	log.Printf("✅ cache warmed at %s", cfg.DBPath)
}

func collectAppIDs(args []string, fromStdin bool) ([]int64, error) {
	raw := append([]string(nil), args...)

	if fromStdin {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			raw = append(raw, strings.Fields(sc.Text())...)
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}

	out := make([]int64, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			log.Printf("skipping %q: not an appid", s)
			continue
		}
		out = append(out, id)
	}
	return out, nil
}
