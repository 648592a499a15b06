package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/wonny/analyst/internal/docstore"
	"github.com/wonny/analyst/internal/export"
	"github.com/wonny/analyst/internal/knowledge"
	"github.com/wonny/analyst/internal/llm"
	"github.com/wonny/analyst/internal/performance"
	"github.com/wonny/analyst/internal/profile"
	"github.com/wonny/analyst/internal/scheduler"
	"github.com/wonny/analyst/internal/scheduler/jobs"
	"github.com/wonny/analyst/internal/timegate"
	"github.com/wonny/analyst/pkg/config"
	"github.com/wonny/analyst/pkg/database"
	"github.com/wonny/analyst/pkg/logger"
	"github.com/wonny/analyst/pkg/redis"
)

// app holds the wired components shared by every command
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	db         *database.DB
	redis      *redis.Client
	ledger     *performance.Store
	profiles   *profile.Store
	knowledge  *knowledge.Store
	maintainer *knowledge.Maintainer
	exporter   *export.Exporter
	generator  llm.Generator
}

// newApp loads config and wires storage. Postgres and Redis are optional:
// without DATABASE_URL documents live under DATA_DIR, and without Redis
// the day guards are in-memory.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}
	fs := afero.NewOsFs()

	var docs docstore.Store = docstore.NewFileStore(fs, cfg.Storage.DataDir)
	db, err := database.New(ctx, cfg)
	switch {
	case err == nil:
		a.db = db
		docs = docstore.NewPostgresStore(db.Pool)
		log.Info("Using PostgreSQL document store")
	case errors.Is(err, database.ErrNotConfigured):
		log.WithField("dir", cfg.Storage.DataDir).Debug("Using file document store")
	default:
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	rc, err := redis.New(ctx, cfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rc

	loc := cfg.Location()
	a.ledger = performance.NewStore(docs, cfg.Storage.PerformanceDoc, loc, log)
	a.profiles = profile.NewStore(fs, cfg.Storage.ProfilePath, log)
	a.knowledge = knowledge.NewStore(fs, cfg.Storage.KnowledgeDir)
	a.maintainer = knowledge.NewMaintainer(a.knowledge, time.Now, log)
	a.exporter = export.NewExporter(fs, cfg.Storage.ExportPath, a.ledger, a.profiles, a.knowledge, time.Now, log)

	gen, err := llm.NewClaudeGenerator(cfg.LLM, log)
	if err != nil {
		log.WithError(err).Warn("Text generation unavailable; scans and reviews will fail until ANTHROPIC_API_KEY is set")
		a.generator = llm.Func(func(context.Context, string) (string, error) {
			return "", llm.ErrNotConfigured
		})
	} else {
		a.generator = gen
	}

	return a, nil
}

// gate builds the day guard, shared through Redis when enabled
func (a *app) gate() *timegate.Gate {
	opts := []timegate.Option{timegate.WithLogger(a.log)}
	if a.redis != nil && a.redis.Enabled() {
		opts = append(opts, timegate.WithStore(timegate.NewRedisStore(a.redis)))
	}
	return timegate.New(a.cfg.Location(), opts...)
}

// scheduler builds a scheduler with the standard jobs registered
func (a *app) scheduler() (*scheduler.Scheduler, error) {
	s := scheduler.New(a.gate(), a.cfg.PollInterval, a.log)
	err := jobs.Register(s, jobs.Deps{
		Ledger:     a.ledger,
		Profiles:   a.profiles,
		Knowledge:  a.knowledge,
		Maintainer: a.maintainer,
		Exporter:   a.exporter,
		Generator:  a.generator,
		Logger:     a.log,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
