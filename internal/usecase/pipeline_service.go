package usecase

import (
	"context"
	"fmt"

	"github.com/dani537/fantasy-crew/internal/domain/analysis"
	"github.com/dani537/fantasy-crew/internal/domain/fixture"
	"github.com/dani537/fantasy-crew/internal/domain/news"
	"github.com/dani537/fantasy-crew/internal/domain/season"
	"github.com/dani537/fantasy-crew/internal/domain/standings"
	"github.com/dani537/fantasy-crew/internal/domain/team"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
)

// PipelineResult is the terminal artifact of one run: the master table
// plus the enriched side tables downstream report stages consume.
type PipelineResult struct {
	Master       []analysis.Row
	Teams        []team.Team
	NextMatches  []fixture.Match
	News         []news.Item
	Standings    []standings.Entry
	ActiveEvents []season.Event
	Notices      []Notice
}

// PipelineService runs the reconciliation core in its fixed order:
// resolution, enrichment, consolidation, feature engineering. The input
// bundle must be a fully-materialized snapshot; the service performs no
// fetching of its own.
type PipelineService struct {
	resolver     *ResolverService
	enricher     *EnrichmentService
	consolidator *ConsolidationService
	features     *FeatureService
	logger       *logging.Logger
}

func NewPipelineService(
	resolver *ResolverService,
	enricher *EnrichmentService,
	consolidator *ConsolidationService,
	features *FeatureService,
	logger *logging.Logger,
) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PipelineService{
		resolver:     resolver,
		enricher:     enricher,
		consolidator: consolidator,
		features:     features,
		logger:       logger,
	}
}

// Run produces the master analytical table. The only fatal condition is
// a structurally missing required source; every other anomaly surfaces
// as a Notice on the result.
func (s *PipelineService) Run(ctx context.Context, bundle SourceBundle) (PipelineResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.Run")
	defer span.End()

	resolution, notices := s.resolver.Resolve(ctx, bundle)

	teams, matches, enrichNotices := s.enricher.Enrich(ctx, bundle, resolution)
	notices = append(notices, enrichNotices...)

	rows, err := s.consolidator.Consolidate(ctx, bundle, teams, resolution)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("consolidate player data: %w", err)
	}

	master, featureNotices := s.features.Engineer(ctx, rows)
	notices = append(notices, featureNotices...)

	s.logger.InfoContext(ctx, "pipeline run finished",
		"players", len(master),
		"teams", len(teams),
		"next_matches", len(matches),
		"notices", len(notices),
	)

	return PipelineResult{
		Master:       master,
		Teams:        teams,
		NextMatches:  matches,
		News:         bundle.News,
		Standings:    bundle.Standings,
		ActiveEvents: bundle.ActiveEvents,
		Notices:      notices,
	}, nil
}
