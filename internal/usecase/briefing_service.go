package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dani537/fantasy-crew/internal/domain/analysis"
	"github.com/dani537/fantasy-crew/internal/domain/fixture"
	"github.com/dani537/fantasy-crew/internal/domain/news"
	"github.com/dani537/fantasy-crew/internal/domain/season"
	"github.com/dani537/fantasy-crew/internal/domain/standings"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
)

// ReportWriter turns a structured textual brief into prose. It stands in
// for the external text-generation service and is intentionally opaque.
type ReportWriter interface {
	Write(ctx context.Context, brief string) (string, error)
}

// BriefInput describes one squad-analysis request. UserTeamName is
// mandatory: runs with no explicit identity fail loudly instead of
// silently analysing someone else's squad.
type BriefInput struct {
	UserTeamName string `validate:"required"`
	Master       []analysis.Row
	NextMatches  []fixture.Match
	News         []news.Item
	Standings    []standings.Entry
	ActiveEvents []season.Event
	MaxNews      int
}

// BriefingService assembles the structured brief the report writer
// consumes: the user's squad with availability, form and market context,
// the upcoming round, and recent headlines.
type BriefingService struct {
	validate *validator.Validate
	writer   ReportWriter
	logger   *logging.Logger
}

func NewBriefingService(writer ReportWriter, logger *logging.Logger) *BriefingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BriefingService{
		validate: validator.New(),
		writer:   writer,
		logger:   logger,
	}
}

// SquadBrief renders the textual brief for the user's squad. The master
// table is filtered on the ownership column; an empty squad is not an
// error, the brief simply says so.
func (s *BriefingService) SquadBrief(ctx context.Context, in BriefInput) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BriefingService.SquadBrief")
	defer span.End()

	if err := s.validate.Struct(in); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var squad []analysis.Row
	for _, row := range in.Master {
		if row.OwnerName != nil && *row.OwnerName == in.UserTeamName {
			squad = append(squad, row)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SQUAD BRIEF — %s\n", in.UserTeamName)
	fmt.Fprintf(&b, "Players owned: %d\n\n", len(squad))

	if len(squad) == 0 {
		b.WriteString("No players found for this team in the master table.\n")
	}
	for _, row := range squad {
		fmt.Fprintf(&b, "- %s (%s", row.PlayerName, row.Position)
		if row.AltPositions != "" {
			fmt.Fprintf(&b, ", alt: %s", row.AltPositions)
		}
		fmt.Fprintf(&b, ") status=%s starter=%.2f", row.Status, row.StarterProbability)
		if row.AvgPoints != nil {
			fmt.Fprintf(&b, " avg=%.2f", *row.AvgPoints)
		}
		if row.AvgPointsHome != nil && row.AvgPointsAway != nil {
			fmt.Fprintf(&b, " (home %.2f / away %.2f)", *row.AvgPointsHome, *row.AvgPointsAway)
		}
		if row.TeamName != nil {
			fmt.Fprintf(&b, " club=%s", *row.TeamName)
		}
		if row.OddsHomeWin != nil && row.OddsDraw != nil && row.OddsAwayWin != nil {
			fmt.Fprintf(&b, " odds=%.2f/%.2f/%.2f", *row.OddsHomeWin, *row.OddsDraw, *row.OddsAwayWin)
		}
		if row.OfferAmount != nil {
			fmt.Fprintf(&b, " offer=%d", *row.OfferAmount)
		}
		if row.Doubtful != nil && *row.Doubtful {
			b.WriteString(" DOUBT")
		}
		if row.Cautioned != nil && *row.Cautioned {
			b.WriteString(" BOOKING-RISK")
		}
		b.WriteString("\n")
	}

	if len(in.Standings) > 0 {
		b.WriteString("\nLEAGUE TABLE\n")
		for _, entry := range in.Standings {
			fmt.Fprintf(&b, "- #%d %s points=%d value=%d", entry.Position, entry.Name, entry.Points, entry.TeamValue)
			if entry.Name == in.UserTeamName {
				b.WriteString(" (you)")
			}
			b.WriteString("\n")
		}
	}

	if len(in.ActiveEvents) > 0 {
		b.WriteString("\nEVENTS IN PLAY\n")
		for _, e := range in.ActiveEvents {
			fmt.Fprintf(&b, "- %s status=%s", e.Name, e.Status)
			if e.End != nil {
				fmt.Fprintf(&b, " ends=%s", e.End.UTC().Format("2006-01-02 15:04"))
			}
			b.WriteString("\n")
		}
	}

	if len(in.NextMatches) > 0 {
		b.WriteString("\nUPCOMING ROUND\n")
		for _, m := range in.NextMatches {
			fmt.Fprintf(&b, "- %s", m.Label)
			if m.OddsHomeWin != nil && m.OddsDraw != nil && m.OddsAwayWin != nil {
				fmt.Fprintf(&b, " odds=%.2f/%.2f/%.2f", *m.OddsHomeWin, *m.OddsDraw, *m.OddsAwayWin)
			}
			b.WriteString("\n")
		}
	}

	maxNews := in.MaxNews
	if maxNews <= 0 {
		maxNews = 10
	}
	if len(in.News) > 0 {
		b.WriteString("\nHEADLINES\n")
		for i, item := range in.News {
			if i >= maxNews {
				break
			}
			fmt.Fprintf(&b, "- [%s] %s\n", item.Published, item.Title)
		}
	}

	s.logger.InfoContext(ctx, "squad brief assembled", "team", in.UserTeamName, "squad_size", len(squad))
	return b.String(), nil
}

// WriteReport assembles the brief and hands it to the report writer.
func (s *BriefingService) WriteReport(ctx context.Context, in BriefInput) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BriefingService.WriteReport")
	defer span.End()

	if s.writer == nil {
		return "", fmt.Errorf("%w: report writer not configured", ErrDependencyUnavailable)
	}

	brief, err := s.SquadBrief(ctx, in)
	if err != nil {
		return "", err
	}

	report, err := s.writer.Write(ctx, brief)
	if err != nil {
		return "", fmt.Errorf("write squad report: %w", err)
	}
	return report, nil
}
