// Command ingest is the match insights ingestion CLI.
//
// Usage:
//
//	insights-ingest discover --start-date 2024-01-01 --end-date 2024-06-30
//	insights-ingest discover --coords "37.77,-122.41:70mi" --min-entrants 32
//	insights-ingest event --url https://start.gg/tournament/genesis-x/event/ultimate-singles
//	insights-ingest event --tournament-slug tournament/genesis-x --event-slug ultimate-singles
//	insights-ingest prune --keep 10
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shrutikmk/startgg-match-insights/internal/config"
	"github.com/shrutikmk/startgg-match-insights/internal/db"
	"github.com/shrutikmk/startgg-match-insights/internal/pipeline"
	"github.com/shrutikmk/startgg-match-insights/internal/provider/startgg"
	"github.com/shrutikmk/startgg-match-insights/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "insights-ingest",
		Short: "start.gg match insights ingestion CLI",
	}

	root.AddCommand(discoverCmd())
	root.AddCommand(eventCmd())
	root.AddCommand(pruneCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// sharedFlags are common to the discover and event commands.
type sharedFlags struct {
	apiKey   string
	out      string
	name     string
	postgres bool
}

func (f *sharedFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "start.gg API key (else env STARTGG_API_KEY)")
	cmd.Flags().StringVar(&f.out, "out", "data/outputs", "Output directory for the JSON bundle")
	cmd.Flags().StringVar(&f.name, "bundle-name", store.DefaultBundleName, "JSON bundle filename")
	cmd.Flags().BoolVar(&f.postgres, "postgres", false, "Also store the bundle in Postgres (needs DATABASE_URL)")
}

// --------------------------------------------------------------------------
// discover command
// --------------------------------------------------------------------------

func discoverCmd() *cobra.Command {
	var (
		shared      sharedFlags
		coords      []string
		startDate   string
		endDate     string
		game        string
		minEntrants int
	)
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover tournaments by region and date window, then rank players",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, cfg *config.Config) error {
				regions, err := parseCoords(coords)
				if err != nil {
					return err
				}
				if len(regions) == 0 {
					regions = defaultRegions
				}

				after, err := parseDate(startDate)
				if err != nil {
					return err
				}
				before, err := parseDate(endDate)
				if err != nil {
					return err
				}
				if err := validateWindow(after, before); err != nil {
					return err
				}

				for i, r := range regions {
					logger.Info("Discovery region", "n", i+1, "coordinates", r.Coordinates, "radius", r.Radius)
				}

				return runPipeline(ctx, cfg, shared, pipeline.Options{
					Regions:     regions,
					After:       after,
					Before:      before,
					GameTitle:   game,
					MinEntrants: minEntrants,
				})
			})
		},
	}
	shared.register(cmd)
	cmd.Flags().StringArrayVar(&coords, "coords", nil, `Discovery region "LAT,LON:RADIUS" (repeatable; default NorCal)`)
	cmd.Flags().StringVar(&startDate, "start-date", "", "Inclusive YYYY-MM-DD lower bound")
	cmd.Flags().StringVar(&endDate, "end-date", "", "Inclusive YYYY-MM-DD upper bound")
	cmd.Flags().StringVar(&game, "game", config.DefaultGameTitle, "Exact videogame title to keep")
	cmd.Flags().IntVar(&minEntrants, "min-entrants", config.DefaultMinEntrants, "Minimum entrant count per event")
	return cmd
}

// --------------------------------------------------------------------------
// event command (direct mode)
// --------------------------------------------------------------------------

func eventCmd() *cobra.Command {
	var (
		shared         sharedFlags
		urls           []string
		tournamentSlug string
		eventSlug      string
	)
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Rank players from explicit events (no discovery)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, cfg *config.Config) error {
				var slugs []string
				for _, u := range urls {
					slug, err := slugFromURL(u)
					if err != nil {
						return err
					}
					slugs = append(slugs, slug)
				}
				if tournamentSlug != "" && eventSlug != "" {
					slugs = append(slugs, fmt.Sprintf("%s/event/%s", tournamentSlug, eventSlug))
				}
				if len(slugs) == 0 {
					return fmt.Errorf("provide --url or --tournament-slug with --event-slug")
				}

				return runPipeline(ctx, cfg, shared, pipeline.Options{EventSlugs: slugs})
			})
		},
	}
	shared.register(cmd)
	cmd.Flags().StringArrayVar(&urls, "url", nil, "start.gg event URL (repeatable)")
	cmd.Flags().StringVar(&tournamentSlug, "tournament-slug", "", `Tournament slug, e.g. "tournament/genesis-x"`)
	cmd.Flags().StringVar(&eventSlug, "event-slug", "", "Event slug under the tournament")
	return cmd
}

// --------------------------------------------------------------------------
// prune command
// --------------------------------------------------------------------------

func pruneCmd() *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest N stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, cfg *config.Config) error {
				if err := cfg.RequireDatabase(); err != nil {
					return err
				}
				pool, err := db.New(ctx, cfg)
				if err != nil {
					return fmt.Errorf("connect to database: %w", err)
				}
				defer pool.Close()

				removed, err := store.PruneRuns(ctx, pool, keep)
				if err != nil {
					return err
				}
				logger.Info("Prune finished", "kept", keep, "removed", removed)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 10, "Number of newest runs to keep")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runPipeline executes a configured run and persists the bundle to the
// selected sinks.
func runPipeline(ctx context.Context, cfg *config.Config, shared sharedFlags, opts pipeline.Options) error {
	if shared.apiKey != "" {
		cfg.StartGGAPIKey = shared.apiKey
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	client := startgg.NewClient(cfg.StartGGBaseURL, cfg.StartGGAPIKey, cfg.StartGGRate, logger)

	start := time.Now()
	bundle, err := pipeline.Run(ctx, client, opts, logger)
	if err != nil {
		return err
	}
	logger.Info("Pipeline finished",
		"mode", bundle.Metadata.Mode,
		"events", bundle.Metadata.EventCount,
		"sets", bundle.Metadata.SetCount,
		"dropped_events", bundle.Metadata.DroppedEvents,
		"failed_sets", bundle.Metadata.FailedSets,
		"duration", time.Since(start).Round(time.Second))

	path, err := store.WriteJSON(bundle, shared.out, shared.name)
	if err != nil {
		return err
	}
	logger.Info("Bundle written", "path", path)

	if shared.postgres {
		if err := cfg.RequireDatabase(); err != nil {
			return err
		}
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		result, err := store.InsertRun(ctx, pool, bundle, logger)
		if err != nil {
			return err
		}
		for _, e := range result.Errors {
			logger.Error("store error", "error", e)
		}
	}
	return nil
}

// runIngest handles config loading and context cancellation.
func runIngest(fn func(ctx context.Context, cfg *config.Config) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	return fn(ctx, cfg)
}
