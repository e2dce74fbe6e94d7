// Package common provides shared dependency construction for adboard
// commands.
package common

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/adboard/internal/cache"
	"github.com/jonesrussell/adboard/internal/config"
	"github.com/jonesrussell/adboard/internal/database"
	"github.com/jonesrussell/adboard/internal/extractor"
	"github.com/jonesrussell/adboard/internal/fetcher"
	"github.com/jonesrussell/adboard/internal/logger"
	"github.com/jonesrussell/adboard/internal/resolver"
	"github.com/jonesrussell/adboard/internal/store"
)

// Deps holds configuration and logging shared by every command.
type Deps struct {
	Config *config.Config
	Logger logger.Interface
}

// NewDeps loads configuration and builds the logger.
func NewDeps() (*Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:       logger.Level(cfg.Logger.Level),
		Development: cfg.Logger.Development,
		Encoding:    cfg.Logger.Encoding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &Deps{Config: cfg, Logger: log}, nil
}

// Pipeline holds the fully wired resolution pipeline.
type Pipeline struct {
	DB         *sqlx.DB
	Store      *store.ResilientStore
	Comments   *database.CommentRepository
	ParseCache *cache.TTLMap[extractor.Result]
	Mirror     *store.Mirror
	Resolver   *resolver.Resolver
}

// NewPipeline wires the database, resilient store, fetcher, extractor,
// and resolver. An unreachable database is not fatal: the store serves
// from its in-memory mirror until the database comes back.
func NewPipeline(deps *Deps) (*Pipeline, error) {
	cfg := deps.Config
	log := deps.Logger

	db, reachable, err := database.OpenPostgres(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if reachable {
		log.Info("Connected to database", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)
	} else {
		log.Warn("Database unreachable at startup, serving from in-memory mirror",
			"host", cfg.Database.Host,
		)
	}

	adRepo := database.NewAdRepository(db)
	commentRepo := database.NewCommentRepository(db)

	mirror := store.NewMirror(cfg.Cache.TTL)
	records := store.New(adRepo, mirror, log.WithComponent("store"))

	parseCache := cache.New[extractor.Result](cfg.Cache.TTL)

	pageFetcher := fetcher.New(fetcher.Config{
		MaxRetries:     cfg.Fetcher.MaxRetries,
		BackoffBase:    cfg.Fetcher.BaseDelay,
		AttemptTimeout: cfg.Fetcher.AttemptTimeout,
		MaxRedirects:   cfg.Fetcher.MaxRedirects,
	}, log.WithComponent("fetcher"))

	adResolver := resolver.New(
		pageFetcher,
		extractor.New(),
		parseCache,
		records,
		log.WithComponent("resolver"),
	)

	return &Pipeline{
		DB:         db,
		Store:      records,
		Comments:   commentRepo,
		ParseCache: parseCache,
		Mirror:     mirror,
		Resolver:   adResolver,
	}, nil
}

// Close releases pipeline resources.
func (p *Pipeline) Close() error {
	return p.DB.Close()
}
