package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"steamshelf/internal/library"
	"steamshelf/internal/metadata"
	"steamshelf/internal/steam"
	"steamshelf/pkg/database"
	"steamshelf/pkg/models"
	"steamshelf/pkg/utils"
)

func main() {
	fs := flag.NewFlagSet("steamshelf", flag.ExitOnError)
	details := fs.Bool("details", false, "enrich the top games with IGDB metadata")
	top := fs.Int("top", 25, "number of games to print")
	timeout := fs.Duration("timeout", 60*time.Second, "overall timeout")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	args := fs.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: steamshelf [-details] [-top N] <steamid64 | vanity | profile url>")
		os.Exit(1)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.RequireSteam(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	wf := library.NewWorkflow(steam.NewClient(cfg.SteamAPIKey, cfg.SteamTimeout))
	res, err := wf.FetchLibrary(ctx, args[0])
	if err != nil {
		var f *library.Failure
		if errors.As(err, &f) {
			fmt.Fprintln(os.Stderr, f.Code.Message())
			os.Exit(1)
		}
		log.Fatalf("fetch library: %v", err)
	}

	fmt.Printf("%s — %d games\n\n", res.Profile.PersonaName, res.GameCount)

	games := append([]models.Game(nil), res.Games...)
	sort.Slice(games, func(i, j int) bool {
		return games[i].PlaytimeMinutes > games[j].PlaytimeMinutes
	})
	if len(games) > *top {
		games = games[:*top]
	}

	var byApp map[int64]models.GameMetadata
	if *details {
		byApp = fetchDetails(ctx, cfg, games)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GAME\tPLAYTIME\tGENRES")
	for _, g := range games {
		if md, ok := byApp[g.AppID]; ok {
			g = g.WithMetadata(md)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", g.Name, steam.FormatPlaytime(g.PlaytimeMinutes), strings.Join(g.Genres, ", "))
	}
	w.Flush()
}

// fetchDetails runs the cache-aside fetcher against the local cache db.
func fetchDetails(ctx context.Context, cfg utils.Config, games []models.Game) map[int64]models.GameMetadata {
	db := database.MustOpen(database.Config{Path: cfg.DBPath})
	defer db.Close()

	if err := database.Migrate(db, cfg.SchemaPath); err != nil {
		log.Printf("db migrate failed, skipping details: %v", err)
		return nil
	}

	var enricher metadata.Enricher
	if cfg.EnrichmentEnabled() {
		tokens := metadata.NewTokenSource(cfg.IGDBClientID, cfg.IGDBClientSecret, cfg.IGDBTimeout)
		enricher = metadata.NewIGDBClient(cfg.IGDBClientID, tokens, cfg.IGDBTimeout)
	}

	appIDs := make([]int64, len(games))
	for i, g := range games {
		appIDs[i] = g.AppID
	}

	fetcher := metadata.NewFetcher(metadata.NewRepo(db), enricher)
	result := fetcher.EnsureMetadata(ctx, appIDs)

	byApp := make(map[int64]models.GameMetadata, len(result.Records))
	for _, md := range result.Records {
		byApp[md.AppID] = md
	}
	return byApp
}
