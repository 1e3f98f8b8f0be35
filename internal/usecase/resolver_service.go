package usecase

import (
	"context"

	"github.com/dani537/fantasy-crew/internal/platform/fuzzy"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
)

// oddsTeamScoreCutoff guards the odds-provider mapping: that feed quotes
// matches from other competitions whose teams must not be force-matched
// onto league clubs. Matches at or below the cutoff stay unresolved.
const oddsTeamScoreCutoff = 80.0

// Resolution maps foreign-scheme names onto canonical spellings. A name
// absent from a map is unresolved; downstream joins absorb it as a null.
type Resolution struct {
	// TeamByLineupName is total over the lineup source's team names:
	// every non-blank name gets a best-effort match, thresholdless. The
	// lineup site covers only league clubs, so a poor match is still more
	// useful than a hole.
	TeamByLineupName map[string]string

	// PlayerByLineupName is partial: a player resolves only within the
	// candidate pool of its already-resolved team.
	PlayerByLineupName map[string]string

	// TeamByOddsName is partial, thresholded at oddsTeamScoreCutoff.
	TeamByOddsName map[string]string
}

// ResolverService performs fuzzy entity resolution between the foreign
// naming schemes and the canonical identity space.
type ResolverService struct {
	matcher *fuzzy.Matcher
	logger  *logging.Logger
}

func NewResolverService(matcher *fuzzy.Matcher, logger *logging.Logger) *ResolverService {
	if matcher == nil {
		matcher = fuzzy.NewMatcher(nil)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ResolverService{matcher: matcher, logger: logger}
}

// Resolve runs the team pass, then the player pass scoped by its result,
// then the independent odds-provider team mapping. It never fails: bad
// or unmatchable input degrades to absence from the returned maps.
func (s *ResolverService) Resolve(ctx context.Context, bundle SourceBundle) (Resolution, []Notice) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.Resolve")
	defer span.End()

	res := Resolution{
		TeamByLineupName:   make(map[string]string),
		PlayerByLineupName: make(map[string]string),
		TeamByOddsName:     make(map[string]string),
	}
	var notices []Notice

	canonicalTeams := make([]string, 0, len(bundle.Teams))
	teamNameByID := make(map[int64]string, len(bundle.Teams))
	for _, t := range bundle.Teams {
		canonicalTeams = append(canonicalTeams, t.Name)
		teamNameByID[t.ID] = t.Name
	}

	// Team pass over the distinct lineup-site team names, first-seen order.
	seenTeams := make(map[string]struct{})
	for _, signal := range bundle.LineupSignals {
		name := signal.TeamName
		if name == "" {
			continue
		}
		if _, done := seenTeams[name]; done {
			continue
		}
		seenTeams[name] = struct{}{}

		match, score, ok := s.matcher.BestMatch(name, canonicalTeams)
		if !ok {
			notices = append(notices, Notice{Stage: "resolver", Code: noticeCodeUnresolvedTeam, Detail: name})
			s.logger.WarnContext(ctx, "lineup team stayed unresolved", "team", name)
			continue
		}
		res.TeamByLineupName[name] = match
		s.logger.DebugContext(ctx, "lineup team resolved", "foreign", name, "canonical", match, "score", score)
	}

	// Player pass, candidates restricted to the resolved team's squad.
	// Coaches never reach this pool; extraction drops position code 5.
	playersByTeamName := make(map[string][]string)
	for _, p := range bundle.Players {
		if p.TeamID == nil {
			continue
		}
		teamName, ok := teamNameByID[*p.TeamID]
		if !ok {
			continue
		}
		playersByTeamName[teamName] = append(playersByTeamName[teamName], p.Name)
	}

	for _, signal := range bundle.LineupSignals {
		if signal.PlayerName == "" {
			continue
		}
		if _, done := res.PlayerByLineupName[signal.PlayerName]; done {
			continue
		}

		canonicalTeam, teamResolved := res.TeamByLineupName[signal.TeamName]
		if !teamResolved {
			notices = append(notices, Notice{Stage: "resolver", Code: noticeCodeUnresolvedPlayer, Detail: signal.PlayerName})
			continue
		}

		pool := playersByTeamName[canonicalTeam]
		match, _, ok := s.matcher.BestMatch(signal.PlayerName, pool)
		if !ok {
			notices = append(notices, Notice{Stage: "resolver", Code: noticeCodeUnresolvedPlayer, Detail: signal.PlayerName})
			continue
		}
		res.PlayerByLineupName[signal.PlayerName] = match
	}

	// Odds-provider team names, collected from unplayed fixtures only.
	seenOdds := make(map[string]struct{})
	for _, f := range bundle.Odds {
		if !f.IsFuture() {
			continue
		}
		for _, name := range []string{f.HomeName, f.AwayName} {
			if name == "" {
				continue
			}
			if _, done := seenOdds[name]; done {
				continue
			}
			seenOdds[name] = struct{}{}

			match, score, ok := s.matcher.BestMatchAbove(name, canonicalTeams, oddsTeamScoreCutoff)
			if !ok {
				s.logger.DebugContext(ctx, "odds team below cutoff", "team", name)
				continue
			}
			res.TeamByOddsName[name] = match
			s.logger.DebugContext(ctx, "odds team resolved", "foreign", name, "canonical", match, "score", score)
		}
	}

	s.logger.InfoContext(ctx, "entity resolution finished",
		"lineup_teams", len(res.TeamByLineupName),
		"lineup_players", len(res.PlayerByLineupName),
		"odds_teams", len(res.TeamByOddsName),
		"notices", len(notices),
	)

	return res, notices
}
