package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/officedhq/officed/internal/blob"
	"github.com/officedhq/officed/internal/config"
	"github.com/officedhq/officed/internal/dispatch"
	"github.com/officedhq/officed/internal/llm"
	"github.com/officedhq/officed/internal/office"
	"github.com/officedhq/officed/internal/roster"
	"github.com/officedhq/officed/internal/store"
)

// app holds the fully wired office and its collaborators.
type app struct {
	cfg     config.Config
	roster  *roster.Roster
	threads store.Threads
	plans   store.Plans
	feed    store.Feed
	office  *office.Office

	db *store.DB // nil for the memory driver
}

// buildApp loads config and wires the full stack: roster, provider
// registry, dispatcher, stores (with in-memory fallback), blob store,
// and the office itself.
func buildApp() (*app, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}
	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return nil, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating data directories: %w", err)
	}

	rosterPath := cfg.Office.RosterPath
	if rosterPath == "" {
		rosterPath = paths.Roster
	}
	ros, err := roster.Load(rosterPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, roster: ros}

	switch cfg.Store.Driver {
	case "memory":
		a.threads = store.NewMemoryThreads()
		a.plans = store.NewMemoryPlans()
		a.feed = store.NewMemoryFeed()
		log.Info().Msg("using in-memory store")
	default:
		dbPath := cfg.Store.Path
		if dbPath == "" {
			dbPath = filepath.Join(paths.Data, "officed.db")
		}
		db, err := store.Open(dbPath, log)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.db = db
		a.threads = store.NewSQLiteThreads(db)
		a.plans = store.NewFallbackPlans(store.NewSQLitePlans(db), log)
		a.feed = store.NewFallbackFeed(store.NewSQLiteFeed(db), log)
		log.Info().Str("path", dbPath).Msg("using SQLite store")
	}

	blobs, err := blob.NewStore(paths.Attachments)
	if err != nil {
		return nil, fmt.Errorf("opening attachment store: %w", err)
	}

	registry := llm.NewRegistryFromConfig(cfg.Backends, log)
	dispatcher := dispatch.New(registry, ros, nil, log)

	gov := cfg.Governance
	a.office = office.New(ros, dispatcher, a.threads, a.plans, a.feed, blobs,
		office.WatcherConfig{
			Cooldown:       time.Duration(gov.CooldownSeconds) * time.Second,
			DebounceActive: time.Duration(gov.DebounceActiveMs) * time.Millisecond,
			DebounceIdle:   time.Duration(gov.DebounceIdleMs) * time.Millisecond,
			RecentMessages: gov.RecentMessages,
			RecentTurns:    gov.RecentTurns,
		},
		office.Options{
			MaxTokens:   cfg.Office.MaxTokens,
			Temperature: cfg.Office.Temperature,
		},
		log)

	return a, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
