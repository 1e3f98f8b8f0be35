// Package app assembles one pipeline run: source clients, reconciliation
// services, the audit store and the export surfaces, all from config.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	_ "github.com/lib/pq"

	"github.com/dani537/fantasy-crew/external/biwenger"
	"github.com/dani537/fantasy-crew/external/comuniate"
	"github.com/dani537/fantasy-crew/external/euroclubindex"
	"github.com/dani537/fantasy-crew/external/jornadaperfecta"
	"github.com/dani537/fantasy-crew/external/reportqueue"
	"github.com/dani537/fantasy-crew/internal/config"
	"github.com/dani537/fantasy-crew/internal/domain/snapshot"
	"github.com/dani537/fantasy-crew/internal/infrastructure/repository/postgres"
	"github.com/dani537/fantasy-crew/internal/interfaces/export"
	"github.com/dani537/fantasy-crew/internal/platform/fuzzy"
	idgen "github.com/dani537/fantasy-crew/internal/platform/id"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
	"github.com/dani537/fantasy-crew/internal/platform/resilience"
	"github.com/dani537/fantasy-crew/internal/usecase"
)

// App holds the wired collaborators of one run.
type App struct {
	Config config.Config
	Logger *logging.Logger
	RunID  string

	Biwenger   *biwenger.Client
	Extraction *usecase.ExtractionService
	Pipeline   *usecase.PipelineService
	Briefing   *usecase.BriefingService
	Exporter   *export.Exporter

	// Publisher is nil when report delivery is disabled.
	Publisher *reportqueue.WebhookPublisher

	db *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	runID, err := idgen.NewRunGenerator().NewRunID()
	if err != nil {
		return nil, fmt.Errorf("mint run id: %w", err)
	}
	logger = logger.With("run_id", runID)

	a := &App{Config: cfg, Logger: logger, RunID: runID}

	// Outbound HTTP carries trace spans so a slow source shows up in the
	// run's trace rather than as an opaque gap.
	tracedClient := func(timeout time.Duration) *http.Client {
		return &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	a.Biwenger = biwenger.NewClient(biwenger.ClientConfig{
		HTTPClient: tracedClient(cfg.BiwengerTimeout),
		CDNBaseURL: cfg.BiwengerCDNBaseURL,
		AppBaseURL: cfg.BiwengerAppBaseURL,
		Email:      cfg.BiwengerEmail,
		Password:   cfg.BiwengerPassword,
		Token:      cfg.BiwengerToken,
		LeagueID:   cfg.BiwengerLeagueID,
		UserID:     cfg.BiwengerUserID,
		ScoreType:  cfg.BiwengerScoreType,
		Timeout:    cfg.BiwengerTimeout,
		MaxRetries: cfg.BiwengerMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.BiwengerCircuitEnabled,
			FailureThreshold: cfg.BiwengerCircuitFailureCount,
			OpenTimeout:      cfg.BiwengerCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.BiwengerCircuitHalfOpenReq,
		},
	})

	var lineups usecase.LineupSource
	if cfg.ComuniateEnabled {
		lineups = comuniate.NewClient(comuniate.ClientConfig{
			HTTPClient: tracedClient(cfg.ComuniateTimeout),
			BaseURL:    cfg.ComuniateBaseURL,
			Mode:       cfg.ComuniateMode,
			PoolSize:   cfg.ComuniatePoolSize,
			Timeout:    cfg.ComuniateTimeout,
			MaxRetries: cfg.ComuniateMaxRetries,
			Logger:     logger,
		})
	}

	var oddsSource usecase.OddsSource
	if cfg.OddsEnabled {
		oddsSource = euroclubindex.NewClient(euroclubindex.ClientConfig{
			HTTPClient: tracedClient(cfg.OddsTimeout),
			BaseURL:    cfg.OddsBaseURL,
			LeagueID:   cfg.OddsLeagueID,
			Timeout:    cfg.OddsTimeout,
			MaxRetries: cfg.OddsMaxRetries,
			Logger:     logger,
		})
	}

	var newsSource usecase.NewsSource
	if cfg.NewsEnabled {
		newsSource = jornadaperfecta.NewClient(jornadaperfecta.ClientConfig{
			HTTPClient: tracedClient(cfg.NewsTimeout),
			FeedURL:    cfg.NewsFeedURL,
			Timeout:    cfg.NewsTimeout,
			Logger:     logger,
		})
	}

	var snapshots snapshot.Repository
	if cfg.SnapshotsEnabled {
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		snapshots = postgres.NewSnapshotRepository(db)
	}

	a.Extraction = usecase.NewExtractionService(
		a.Biwenger,
		a.Biwenger,
		lineups,
		oddsSource,
		newsSource,
		snapshots,
		logger,
	)

	matcher := fuzzy.NewMatcher(fuzzy.NewSorensenDiceScorer())
	a.Pipeline = usecase.NewPipelineService(
		usecase.NewResolverService(matcher, logger),
		usecase.NewEnrichmentService(logger),
		usecase.NewConsolidationService(logger),
		usecase.NewFeatureService(logger),
		logger,
	)

	a.Briefing = usecase.NewBriefingService(nil, logger)

	exporter, err := export.NewExporter(cfg.ExportDir, logger)
	if err != nil {
		return nil, err
	}
	a.Exporter = exporter

	if cfg.ReportWebhookEnabled {
		publisher, err := reportqueue.NewWebhookPublisher(reportqueue.WebhookPublisherConfig{
			TargetURL:  cfg.ReportWebhookTargetURL,
			Token:      cfg.ReportWebhookToken,
			Timeout:    cfg.ReportWebhookTimeout,
			MaxRetries: cfg.ReportWebhookMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.ReportCircuitEnabled,
				FailureThreshold: cfg.ReportCircuitFailureCount,
				OpenTimeout:      cfg.ReportCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.ReportCircuitHalfOpenReq,
			},
		})
		if err != nil {
			return nil, err
		}
		a.Publisher = publisher
	}

	return a, nil
}

// Authenticate logs in when no token is configured and adopts the
// account's league and user ids when they were not set explicitly.
func (a *App) Authenticate(ctx context.Context) error {
	if a.Config.BiwengerToken == "" {
		if err := a.Biwenger.Login(ctx); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}
	if _, err := a.Biwenger.Account(ctx); err != nil {
		return fmt.Errorf("resolve account: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	return db, nil
}
