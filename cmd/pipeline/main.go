// Command pipeline runs one extraction-and-consolidation pass: it pulls
// every configured source, reconciles them into the master table, writes
// the export artifacts and assembles the squad brief.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dani537/fantasy-crew/internal/app"
	"github.com/dani537/fantasy-crew/internal/config"
	"github.com/dani537/fantasy-crew/internal/observability"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
	"github.com/dani537/fantasy-crew/internal/usecase"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("load config", "error", err)
		return 1
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("shutdown tracing", "error", err)
		}
	}()

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		return 1
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Warn("stop profiling", "error", err)
		}
	}()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()
	logger = a.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Authenticate(ctx); err != nil {
		logger.Error("authenticate against primary source", "error", err)
		return 1
	}

	bundle, notices := a.Extraction.Extract(ctx)

	result, err := a.Pipeline.Run(ctx, bundle)
	if err != nil {
		logger.Error("pipeline aborted", "error", err)
		return 1
	}
	notices = append(notices, result.Notices...)

	masterCSV, masterJSON, err := a.Exporter.WriteMaster(ctx, a.RunID, result.Master)
	if err != nil {
		logger.Error("export master table", "error", err)
		return 1
	}
	fixturesCSV, fixturesJSON, err := a.Exporter.WriteFixtures(ctx, a.RunID, result.NextMatches)
	if err != nil {
		logger.Error("export fixture table", "error", err)
		return 1
	}
	standingsCSV, standingsJSON, err := a.Exporter.WriteStandings(ctx, a.RunID, result.Standings)
	if err != nil {
		logger.Error("export standings table", "error", err)
		return 1
	}

	brief, err := a.Briefing.SquadBrief(ctx, usecase.BriefInput{
		UserTeamName: cfg.UserTeamName,
		Master:       result.Master,
		NextMatches:  result.NextMatches,
		News:         result.News,
		Standings:    result.Standings,
		ActiveEvents: result.ActiveEvents,
		MaxNews:      cfg.NewsMaxItems,
	})
	if err != nil {
		logger.Error("assemble squad brief", "error", err)
		return 1
	}

	if a.Publisher != nil {
		payload := map[string]any{
			"run_id":         a.RunID,
			"brief":          brief,
			"master_csv":     masterCSV,
			"master_json":    masterJSON,
			"fixtures_csv":   fixturesCSV,
			"fixtures_json":  fixturesJSON,
			"standings_csv":  standingsCSV,
			"standings_json": standingsJSON,
			"notice_count":   len(notices),
		}
		if err := a.Publisher.Publish(ctx, "squad_brief", payload); err != nil {
			logger.Warn("deliver report downstream", "error", err)
		}
	}

	for _, notice := range notices {
		logger.Warn("pipeline notice", "stage", notice.Stage, "code", notice.Code, "detail", notice.Detail)
	}
	logger.Info("run complete",
		"players", len(result.Master),
		"next_matches", len(result.NextMatches),
		"notices", len(notices),
	)
	return 0
}
