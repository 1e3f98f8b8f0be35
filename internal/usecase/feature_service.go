package usecase

import (
	"context"
	"strconv"
	"strings"

	"github.com/dani537/fantasy-crew/internal/domain/analysis"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
)

var positionLabels = map[int]string{
	1: "GK",
	2: "DF",
	3: "MF",
	4: "FW",
}

// FeatureService normalizes raw encodings into typed, comparable features
// and computes derived metrics. It is a pure, single-pass transform over
// the consolidated table: no network, no disk, no shared state.
type FeatureService struct {
	logger *logging.Logger
}

func NewFeatureService(logger *logging.Logger) *FeatureService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FeatureService{logger: logger}
}

// Engineer decodes positions, parses alternate positions, normalizes the
// starter probability, computes scoring averages, then rounds every float
// feature to 2 decimal places. Rounding is deliberately lossy and
// one-way; downstream consumers pay per character.
func (s *FeatureService) Engineer(ctx context.Context, rows []analysis.Row) ([]analysis.Row, []Notice) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeatureService.Engineer")
	defer span.End()

	out := make([]analysis.Row, len(rows))
	var notices []Notice
	for i, row := range rows {
		row.Position = DecodePosition(row.PositionCode)

		altPositions, ok := DecodeAltPositions(row.AltPositionCodes, row.AltPositionsRaw)
		if !ok {
			notices = append(notices, Notice{Stage: "features", Code: noticeCodeMalformedValue, Detail: "alt_positions: " + row.AltPositionsRaw})
			s.logger.WarnContext(ctx, "alt positions kept verbatim", "player", row.PlayerName, "raw", row.AltPositionsRaw)
		}
		row.AltPositions = altPositions

		prob, ok := normalizeStarterChance(row.StarterChanceRaw)
		if !ok {
			notices = append(notices, Notice{Stage: "features", Code: noticeCodeMalformedValue, Detail: "starter_chance: " + *row.StarterChanceRaw})
			s.logger.WarnContext(ctx, "starter chance unparseable, defaulting to 0", "player", row.PlayerName, "raw", *row.StarterChanceRaw)
		}
		row.StarterProbability = prob

		row.AvgPoints = ptr(averagePoints(row.PointsHome+row.PointsAway, row.PlayedHome+row.PlayedAway))
		row.AvgPointsHome = ptr(averagePoints(row.PointsHome, row.PlayedHome))
		row.AvgPointsAway = ptr(averagePoints(row.PointsAway, row.PlayedAway))

		roundFloatFeatures(&row)
		out[i] = row
	}

	s.logger.InfoContext(ctx, "feature engineering finished", "rows", len(out), "notices", len(notices))
	return out, notices
}

// DecodePosition maps a primary-source position code onto its label.
// Unknown codes pass through as their literal digits, never an error.
func DecodePosition(code int) string {
	if label, ok := positionLabels[code]; ok {
		return label
	}
	return strconv.Itoa(code)
}

// DecodeAltPositions renders the alternate-position set as a label list
// ("DF, FW"). It prefers a structured code slice and falls back to
// parsing the raw string, which may be a bracketed list or bare
// comma-separated codes. Unparseable bracketed input degrades to the raw
// string itself (ok=false); empty input becomes the empty string.
func DecodeAltPositions(codes []int, raw string) (string, bool) {
	if codes != nil {
		return joinPositionCodes(codes), true
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return "", true
	}

	if strings.HasPrefix(raw, "[") {
		inner := strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
		parsed, err := parseCodeList(inner, false)
		if err != nil {
			return raw, false
		}
		return joinPositionCodes(parsed), true
	}

	parsed, err := parseCodeList(raw, true)
	if err != nil {
		return raw, false
	}
	return joinPositionCodes(parsed), true
}

func parseCodeList(csv string, skipNonNumeric bool) ([]int, error) {
	parts := strings.Split(csv, ",")
	codes := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil {
			if skipNonNumeric {
				continue
			}
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func joinPositionCodes(codes []int) string {
	if len(codes) == 0 {
		return ""
	}
	labels := make([]string, len(codes))
	for i, code := range codes {
		labels[i] = DecodePosition(code)
	}
	return strings.Join(labels, ", ")
}

// NormalizePercent coerces the heterogeneous probability encodings onto
// [0,1]. Numeric input already in [0,1] is untouched (the transform is
// idempotent); numbers above 1 are read as a 0-100 scale; strings accept
// an optional percent suffix; nil and garbage default to 0.
func NormalizePercent(value any) float64 {
	v, _ := normalizePercent(value)
	return v
}

func normalizePercent(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0.0, true
	case float64:
		return normalizeFraction(v), true
	case float32:
		return normalizeFraction(float64(v)), true
	case int:
		return normalizeFraction(float64(v)), true
	case int64:
		return normalizeFraction(float64(v)), true
	case string:
		trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
		if trimmed == "" {
			return 0.0, true
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0.0, false
		}
		return parsed / 100, true
	default:
		return 0.0, false
	}
}

func normalizeFraction(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	return v
}

func normalizeStarterChance(raw *string) (float64, bool) {
	if raw == nil {
		return 0.0, true
	}
	return normalizePercent(*raw)
}

// averagePoints divides points by matches played, degrading a zero
// denominator to 1 so an unplayed split yields the raw point total
// instead of being undefined. Documented approximation, kept on purpose.
func averagePoints(points, played int) float64 {
	if played == 0 {
		played = 1
	}
	return float64(points) / float64(played)
}

func roundFloatFeatures(row *analysis.Row) {
	row.StarterProbability = round2(row.StarterProbability)
	roundPtr(row.AvgPoints)
	roundPtr(row.AvgPointsHome)
	roundPtr(row.AvgPointsAway)
	roundPtr(row.OddsHomeWin)
	roundPtr(row.OddsDraw)
	roundPtr(row.OddsAwayWin)
}

func roundPtr(v *float64) {
	if v != nil {
		*v = round2(*v)
	}
}
