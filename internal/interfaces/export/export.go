// Package export writes the run artifacts: the master analytical table,
// the enriched fixture table and the league standings, each as CSV and
// JSON, named by run id.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/dani537/fantasy-crew/internal/domain/analysis"
	"github.com/dani537/fantasy-crew/internal/domain/fixture"
	"github.com/dani537/fantasy-crew/internal/domain/standings"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
)

type Exporter struct {
	dir    string
	logger *logging.Logger
}

func NewExporter(dir string, logger *logging.Logger) (*Exporter, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("export directory is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &Exporter{dir: dir, logger: logger}, nil
}

// WriteMaster writes the master table and returns the CSV and JSON paths.
func (e *Exporter) WriteMaster(ctx context.Context, runID string, rows []analysis.Row) (string, string, error) {
	records := make([]masterRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, newMasterRecord(row))
	}

	csvPath := filepath.Join(e.dir, "master_"+runID+".csv")
	if err := writeCSV(csvPath, masterHeader, func(w *csv.Writer) error {
		for _, rec := range records {
			if err := w.Write(rec.csvFields()); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return "", "", fmt.Errorf("write master csv: %w", err)
	}

	jsonPath := filepath.Join(e.dir, "master_"+runID+".json")
	if err := writeJSON(jsonPath, records); err != nil {
		return "", "", fmt.Errorf("write master json: %w", err)
	}

	e.logger.InfoContext(ctx, "master table exported", "rows", len(records), "csv", csvPath, "json", jsonPath)
	return csvPath, jsonPath, nil
}

// WriteFixtures writes the enriched fixture table for the next round.
func (e *Exporter) WriteFixtures(ctx context.Context, runID string, matches []fixture.Match) (string, string, error) {
	records := make([]fixtureRecord, 0, len(matches))
	for _, match := range matches {
		records = append(records, newFixtureRecord(match))
	}

	csvPath := filepath.Join(e.dir, "fixtures_"+runID+".csv")
	if err := writeCSV(csvPath, fixtureHeader, func(w *csv.Writer) error {
		for _, rec := range records {
			if err := w.Write(rec.csvFields()); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return "", "", fmt.Errorf("write fixtures csv: %w", err)
	}

	jsonPath := filepath.Join(e.dir, "fixtures_"+runID+".json")
	if err := writeJSON(jsonPath, records); err != nil {
		return "", "", fmt.Errorf("write fixtures json: %w", err)
	}

	e.logger.InfoContext(ctx, "fixture table exported", "rows", len(records), "csv", csvPath, "json", jsonPath)
	return csvPath, jsonPath, nil
}

// WriteStandings writes the user-league classification table.
func (e *Exporter) WriteStandings(ctx context.Context, runID string, entries []standings.Entry) (string, string, error) {
	records := make([]standingRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, newStandingRecord(entry))
	}

	csvPath := filepath.Join(e.dir, "standings_"+runID+".csv")
	if err := writeCSV(csvPath, standingHeader, func(w *csv.Writer) error {
		for _, rec := range records {
			if err := w.Write(rec.csvFields()); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return "", "", fmt.Errorf("write standings csv: %w", err)
	}

	jsonPath := filepath.Join(e.dir, "standings_"+runID+".json")
	if err := writeJSON(jsonPath, records); err != nil {
		return "", "", fmt.Errorf("write standings json: %w", err)
	}

	e.logger.InfoContext(ctx, "standings table exported", "rows", len(records), "csv", csvPath, "json", jsonPath)
	return csvPath, jsonPath, nil
}

func writeCSV(path string, header []string, body func(w *csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := body(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

func writeJSON(path string, payload any) error {
	raw, err := sonic.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

var masterHeader = []string{
	"player_id", "player_name", "position", "alt_positions",
	"price", "price_increment", "status", "status_info", "fitness",
	"points", "points_home", "points_away", "played_home", "played_away",
	"avg_points", "avg_points_home", "avg_points_away",
	"team_name", "team_is_home", "odds_home_win", "odds_draw", "odds_away_win",
	"owner_name", "purchase_date", "purchase_price", "clause", "clause_locked_until", "invested",
	"offer_amount", "offer_until", "offer_bidder_name",
	"sale_price", "sale_until", "sale_seller_name", "sale_clause",
	"starter_chance_raw", "starter_probability", "reserve_name", "doubtful", "cautioned",
}

type masterRecord struct {
	PlayerID           int64    `json:"player_id"`
	PlayerName         string   `json:"player_name"`
	Position           string   `json:"position"`
	AltPositions       string   `json:"alt_positions,omitempty"`
	Price              int64    `json:"price"`
	PriceIncrement     int64    `json:"price_increment"`
	Status             string   `json:"status"`
	StatusInfo         *string  `json:"status_info,omitempty"`
	Fitness            []string `json:"fitness,omitempty"`
	Points             int      `json:"points"`
	PointsHome         int      `json:"points_home"`
	PointsAway         int      `json:"points_away"`
	PlayedHome         int      `json:"played_home"`
	PlayedAway         int      `json:"played_away"`
	AvgPoints          *float64 `json:"avg_points,omitempty"`
	AvgPointsHome      *float64 `json:"avg_points_home,omitempty"`
	AvgPointsAway      *float64 `json:"avg_points_away,omitempty"`
	TeamName           *string  `json:"team_name,omitempty"`
	TeamIsHome         *bool    `json:"team_is_home,omitempty"`
	OddsHomeWin        *float64 `json:"odds_home_win,omitempty"`
	OddsDraw           *float64 `json:"odds_draw,omitempty"`
	OddsAwayWin        *float64 `json:"odds_away_win,omitempty"`
	OwnerName          *string  `json:"owner_name,omitempty"`
	PurchaseDate       *string  `json:"purchase_date,omitempty"`
	PurchasePrice      *int64   `json:"purchase_price,omitempty"`
	Clause             *int64   `json:"clause,omitempty"`
	ClauseLockedUntil  *string  `json:"clause_locked_until,omitempty"`
	Invested           *int64   `json:"invested,omitempty"`
	OfferAmount        *int64   `json:"offer_amount,omitempty"`
	OfferUntil         *string  `json:"offer_until,omitempty"`
	OfferBidderName    *string  `json:"offer_bidder_name,omitempty"`
	SalePrice          *int64   `json:"sale_price,omitempty"`
	SaleUntil          *string  `json:"sale_until,omitempty"`
	SaleSellerName     *string  `json:"sale_seller_name,omitempty"`
	SaleClause         *int64   `json:"sale_clause,omitempty"`
	StarterChanceRaw   *string  `json:"starter_chance_raw,omitempty"`
	StarterProbability float64  `json:"starter_probability"`
	ReserveName        *string  `json:"reserve_name,omitempty"`
	Doubtful           *bool    `json:"doubtful,omitempty"`
	Cautioned          *bool    `json:"cautioned,omitempty"`
}

func newMasterRecord(row analysis.Row) masterRecord {
	return masterRecord{
		PlayerID:           row.PlayerID,
		PlayerName:         row.PlayerName,
		Position:           row.Position,
		AltPositions:       row.AltPositions,
		Price:              row.Price,
		PriceIncrement:     row.PriceIncrement,
		Status:             string(row.Status),
		StatusInfo:         row.StatusInfo,
		Fitness:            row.Fitness,
		Points:             row.Points,
		PointsHome:         row.PointsHome,
		PointsAway:         row.PointsAway,
		PlayedHome:         row.PlayedHome,
		PlayedAway:         row.PlayedAway,
		AvgPoints:          row.AvgPoints,
		AvgPointsHome:      row.AvgPointsHome,
		AvgPointsAway:      row.AvgPointsAway,
		TeamName:           row.TeamName,
		TeamIsHome:         row.TeamIsHome,
		OddsHomeWin:        row.OddsHomeWin,
		OddsDraw:           row.OddsDraw,
		OddsAwayWin:        row.OddsAwayWin,
		OwnerName:          row.OwnerName,
		PurchaseDate:       formatTimePtr(row.PurchaseDate),
		PurchasePrice:      row.PurchasePrice,
		Clause:             row.Clause,
		ClauseLockedUntil:  formatTimePtr(row.ClauseLockedUntil),
		Invested:           row.Invested,
		OfferAmount:        row.OfferAmount,
		OfferUntil:         formatTimePtr(row.OfferUntil),
		OfferBidderName:    row.OfferBidderName,
		SalePrice:          row.SalePrice,
		SaleUntil:          formatTimePtr(row.SaleUntil),
		SaleSellerName:     row.SaleSellerName,
		SaleClause:         row.SaleClause,
		StarterChanceRaw:   row.StarterChanceRaw,
		StarterProbability: row.StarterProbability,
		ReserveName:        row.ReserveName,
		Doubtful:           row.Doubtful,
		Cautioned:          row.Cautioned,
	}
}

func (r masterRecord) csvFields() []string {
	return []string{
		strconv.FormatInt(r.PlayerID, 10),
		r.PlayerName,
		r.Position,
		r.AltPositions,
		strconv.FormatInt(r.Price, 10),
		strconv.FormatInt(r.PriceIncrement, 10),
		r.Status,
		stringOrEmpty(r.StatusInfo),
		strings.Join(r.Fitness, "|"),
		strconv.Itoa(r.Points),
		strconv.Itoa(r.PointsHome),
		strconv.Itoa(r.PointsAway),
		strconv.Itoa(r.PlayedHome),
		strconv.Itoa(r.PlayedAway),
		floatOrEmpty(r.AvgPoints),
		floatOrEmpty(r.AvgPointsHome),
		floatOrEmpty(r.AvgPointsAway),
		stringOrEmpty(r.TeamName),
		boolOrEmpty(r.TeamIsHome),
		floatOrEmpty(r.OddsHomeWin),
		floatOrEmpty(r.OddsDraw),
		floatOrEmpty(r.OddsAwayWin),
		stringOrEmpty(r.OwnerName),
		stringOrEmpty(r.PurchaseDate),
		intOrEmpty(r.PurchasePrice),
		intOrEmpty(r.Clause),
		stringOrEmpty(r.ClauseLockedUntil),
		intOrEmpty(r.Invested),
		intOrEmpty(r.OfferAmount),
		stringOrEmpty(r.OfferUntil),
		stringOrEmpty(r.OfferBidderName),
		intOrEmpty(r.SalePrice),
		stringOrEmpty(r.SaleUntil),
		stringOrEmpty(r.SaleSellerName),
		intOrEmpty(r.SaleClause),
		stringOrEmpty(r.StarterChanceRaw),
		strconv.FormatFloat(r.StarterProbability, 'f', -1, 64),
		stringOrEmpty(r.ReserveName),
		boolOrEmpty(r.Doubtful),
		boolOrEmpty(r.Cautioned),
	}
}

var fixtureHeader = []string{
	"round", "date", "home", "away", "venue", "status",
	"odds_home_win", "odds_draw", "odds_away_win",
}

type fixtureRecord struct {
	Round       string   `json:"round"`
	Date        *string  `json:"date,omitempty"`
	Home        string   `json:"home"`
	Away        string   `json:"away"`
	Venue       string   `json:"venue,omitempty"`
	Status      string   `json:"status,omitempty"`
	OddsHomeWin *float64 `json:"odds_home_win,omitempty"`
	OddsDraw    *float64 `json:"odds_draw,omitempty"`
	OddsAwayWin *float64 `json:"odds_away_win,omitempty"`
}

func newFixtureRecord(match fixture.Match) fixtureRecord {
	return fixtureRecord{
		Round:       match.Round,
		Date:        formatTimePtr(match.Date),
		Home:        match.Home,
		Away:        match.Away,
		Venue:       match.Venue,
		Status:      match.Status,
		OddsHomeWin: match.OddsHomeWin,
		OddsDraw:    match.OddsDraw,
		OddsAwayWin: match.OddsAwayWin,
	}
}

func (r fixtureRecord) csvFields() []string {
	return []string{
		r.Round,
		stringOrEmpty(r.Date),
		r.Home,
		r.Away,
		r.Venue,
		r.Status,
		floatOrEmpty(r.OddsHomeWin),
		floatOrEmpty(r.OddsDraw),
		floatOrEmpty(r.OddsAwayWin),
	}
}

var standingHeader = []string{
	"user_id", "name", "points", "position", "team_size", "team_value", "team_value_inc",
}

type standingRecord struct {
	UserID       int64  `json:"user_id"`
	Name         string `json:"name"`
	Points       int64  `json:"points"`
	Position     int    `json:"position"`
	TeamSize     int    `json:"team_size"`
	TeamValue    int64  `json:"team_value"`
	TeamValueInc int64  `json:"team_value_inc"`
}

func newStandingRecord(entry standings.Entry) standingRecord {
	return standingRecord{
		UserID:       entry.UserID,
		Name:         entry.Name,
		Points:       entry.Points,
		Position:     entry.Position,
		TeamSize:     entry.TeamSize,
		TeamValue:    entry.TeamValue,
		TeamValueInc: entry.TeamValueInc,
	}
}

func (r standingRecord) csvFields() []string {
	return []string{
		strconv.FormatInt(r.UserID, 10),
		r.Name,
		strconv.FormatInt(r.Points, 10),
		strconv.Itoa(r.Position),
		strconv.Itoa(r.TeamSize),
		strconv.FormatInt(r.TeamValue, 10),
		strconv.FormatInt(r.TeamValueInc, 10),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format("2006-01-02 15:04:05")
	return &formatted
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intOrEmpty(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func boolOrEmpty(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
