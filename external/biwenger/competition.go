package biwenger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/dani537/fantasy-crew/internal/domain/fixture"
	"github.com/dani537/fantasy-crew/internal/domain/player"
	"github.com/dani537/fantasy-crew/internal/domain/season"
	"github.com/dani537/fantasy-crew/internal/domain/team"
)

type competitionEnvelope struct {
	Data struct {
		Players map[string]playerPayload `json:"players"`
		Teams   map[string]teamPayload   `json:"teams"`
		Season  struct {
			Rounds []roundPayload `json:"rounds"`
		} `json:"season"`
		ActiveEvents []eventPayload `json:"activeEvents"`
	} `json:"data"`
}

type roundPayload struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Short  string `json:"short"`
	Status string `json:"status"`
	Type   string `json:"type"`
}

type eventPayload struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Type   string `json:"type"`
	End    int64  `json:"end"`
}

type playerPayload struct {
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	TeamID         *int64          `json:"teamID"`
	Position       int             `json:"position"`
	AltPositions   json.RawMessage `json:"altPositions"`
	Price          int64           `json:"price"`
	PriceIncrement int64           `json:"priceIncrement"`
	Status         string          `json:"status"`
	StatusInfo     *string         `json:"statusInfo"`
	Fitness        []any           `json:"fitness"`
	Points         int             `json:"points"`
	PointsHome     int             `json:"pointsHome"`
	PointsAway     int             `json:"pointsAway"`
	PlayedHome     int             `json:"playedHome"`
	PlayedAway     int             `json:"playedAway"`
}

type teamPayload struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	NextGames []struct {
		Date int64 `json:"date"`
		Home struct {
			ID int64 `json:"id"`
		} `json:"home"`
		Away struct {
			ID int64 `json:"id"`
		} `json:"away"`
	} `json:"nextGames"`
}

type roundsEnvelope struct {
	Data struct {
		Next struct {
			Name  string `json:"name"`
			Games []struct {
				Date int64 `json:"date"`
				Home struct {
					Name string `json:"name"`
				} `json:"home"`
				Away struct {
					Name string `json:"name"`
				} `json:"away"`
				Location string `json:"location"`
				Status   string `json:"status"`
			} `json:"games"`
		} `json:"next"`
	} `json:"data"`
}

func (c *Client) competitionURL() string {
	return fmt.Sprintf("%s%s?score=%d", c.cdnBaseURL, competitionPath, c.scoreType)
}

// fetchCompetition serves the shared competition payload: Players and
// Teams read the same endpoint, so the decoded envelope is cached for
// the run instead of fetched twice.
func (c *Client) fetchCompetition(ctx context.Context) (competitionEnvelope, error) {
	value, err := c.cache.GetOrLoad(ctx, "competition", func(ctx context.Context) (any, error) {
		var envelope competitionEnvelope
		if _, err := c.doJSON(ctx, c.competitionURL(), false, &envelope); err != nil {
			return competitionEnvelope{}, err
		}
		return envelope, nil
	})
	if err != nil {
		return competitionEnvelope{}, err
	}
	envelope, ok := value.(competitionEnvelope)
	if !ok {
		return competitionEnvelope{}, fmt.Errorf("unexpected cached payload type %T", value)
	}
	return envelope, nil
}

// Players fetches the competition's player pool. Coaching staff carries
// position code 5 and is dropped here so it never enters resolution or
// consolidation. Output is ordered by id.
func (c *Client) Players(ctx context.Context) ([]player.Player, error) {
	envelope, err := c.fetchCompetition(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch competition players: %w", err)
	}

	players := make([]player.Player, 0, len(envelope.Data.Players))
	for rawID, payload := range envelope.Data.Players {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping player with non-numeric id", "id", rawID)
			continue
		}
		if payload.Position == player.CodeCoach {
			continue
		}

		mapped := player.Player{
			ID:             id,
			Name:           payload.Name,
			Slug:           payload.Slug,
			TeamID:         payload.TeamID,
			PositionCode:   payload.Position,
			Price:          payload.Price,
			PriceIncrement: payload.PriceIncrement,
			Status:         player.ParseStatus(payload.Status),
			StatusInfo:     payload.StatusInfo,
			Fitness:        stringifyFitness(payload.Fitness),
			Points:         payload.Points,
			PointsHome:     payload.PointsHome,
			PointsAway:     payload.PointsAway,
			PlayedHome:     payload.PlayedHome,
			PlayedAway:     payload.PlayedAway,
		}
		mapped.AltPositionCodes, mapped.AltPositionsRaw = decodeAltPositions(payload.AltPositions)
		players = append(players, mapped)
	}

	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players, nil
}

// Teams fetches the clubs plus each club's next announced game, resolving
// opponent ids against the club id map. Output is ordered by id.
func (c *Client) Teams(ctx context.Context) ([]team.Team, error) {
	envelope, err := c.fetchCompetition(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch competition teams: %w", err)
	}

	nameByID := make(map[int64]string, len(envelope.Data.Teams))
	idFor := make(map[string]int64, len(envelope.Data.Teams))
	for rawID, payload := range envelope.Data.Teams {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			continue
		}
		nameByID[id] = payload.Name
		idFor[rawID] = id
	}

	teams := make([]team.Team, 0, len(envelope.Data.Teams))
	for rawID, payload := range envelope.Data.Teams {
		id, ok := idFor[rawID]
		if !ok {
			c.logger.WarnContext(ctx, "skipping team with non-numeric id", "id", rawID)
			continue
		}

		mapped := team.Team{ID: id, Name: payload.Name, Slug: payload.Slug}
		if len(payload.NextGames) > 0 {
			next := payload.NextGames[0]
			mapped.NextGameDate = unixTime(next.Date)
			mapped.NextGameHome = teamNameOrID(nameByID, next.Home.ID)
			mapped.NextGameAway = teamNameOrID(nameByID, next.Away.ID)
			mapped.NextGame = mapped.NextGameHome + " - " + mapped.NextGameAway
			isHome := next.Home.ID == id
			mapped.IsHome = &isHome
		}
		teams = append(teams, mapped)
	}

	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

// Season fetches the competition calendar plus whatever events are open
// right now. It rides the shared competition payload, so calling it
// alongside Players and Teams costs no extra request.
func (c *Client) Season(ctx context.Context) (season.Info, error) {
	envelope, err := c.fetchCompetition(ctx)
	if err != nil {
		return season.Info{}, fmt.Errorf("fetch competition season: %w", err)
	}

	rounds := make([]season.Round, 0, len(envelope.Data.Season.Rounds))
	for _, payload := range envelope.Data.Season.Rounds {
		rounds = append(rounds, season.Round{
			ID:     payload.ID,
			Name:   payload.Name,
			Short:  payload.Short,
			Status: payload.Status,
			Type:   payload.Type,
		})
	}

	events := make([]season.Event, 0, len(envelope.Data.ActiveEvents))
	for _, payload := range envelope.Data.ActiveEvents {
		events = append(events, season.Event{
			ID:     payload.ID,
			Name:   payload.Name,
			Status: payload.Status,
			Type:   payload.Type,
			End:    unixTime(payload.End),
		})
	}

	return season.Info{Rounds: rounds, ActiveEvents: events}, nil
}

// NextRound fetches the upcoming round's games with canonical club names.
func (c *Client) NextRound(ctx context.Context) ([]fixture.Match, error) {
	var envelope roundsEnvelope
	if _, err := c.doJSON(ctx, c.cdnBaseURL+roundsPath, false, &envelope); err != nil {
		return nil, fmt.Errorf("fetch next round: %w", err)
	}

	next := envelope.Data.Next
	matches := make([]fixture.Match, 0, len(next.Games))
	for _, game := range next.Games {
		matches = append(matches, fixture.Match{
			Round:  next.Name,
			Date:   unixTime(game.Date),
			Home:   game.Home.Name,
			Away:   game.Away.Name,
			Label:  game.Home.Name + " vs " + game.Away.Name,
			Venue:  game.Location,
			Status: game.Status,
		})
	}
	return matches, nil
}

func teamNameOrID(nameByID map[int64]string, id int64) string {
	if name, ok := nameByID[id]; ok {
		return name
	}
	return fmt.Sprintf("ID:%d", id)
}

// decodeAltPositions keeps a structured code list when the payload is a
// JSON array, and the raw text otherwise so downstream parsing can judge
// it. A missing or null field yields neither.
func decodeAltPositions(raw json.RawMessage) ([]int, string) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, ""
	}

	var codes []int
	if err := sonic.Unmarshal(raw, &codes); err == nil {
		return codes, ""
	}

	var text string
	if err := sonic.Unmarshal(raw, &text); err == nil {
		return nil, text
	}
	return nil, trimmed
}

// stringifyFitness keeps the recent-form sequence verbatim: numeric marks
// render as integers, rest notes stay text, a null entry (did not play)
// renders as its JSON token.
func stringifyFitness(entries []any) []string {
	if entries == nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch v := entry.(type) {
		case nil:
			out = append(out, "null")
		case string:
			out = append(out, v)
		case float64:
			out = append(out, strconv.FormatInt(int64(v), 10))
		default:
			out = append(out, fmt.Sprintf("%v", v))
		}
	}
	return out
}
