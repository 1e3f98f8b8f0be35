package usecase

import (
	"testing"

	"github.com/dani537/fantasy-crew/internal/domain/analysis"
)

func TestNormalizePercent_IdempotentOnFractions(t *testing.T) {
	for _, v := range []float64{0, 0.25, 0.45, 0.8, 1} {
		if got := NormalizePercent(v); got != v {
			t.Fatalf("normalize(%v) = %v, want unchanged", v, got)
		}
	}
}

func TestNormalizePercent_ScalesWholePercentages(t *testing.T) {
	cases := map[float64]float64{
		45:  0.45,
		80:  0.8,
		100: 1.0,
		1.5: 0.015,
	}
	for in, want := range cases {
		if got := NormalizePercent(in); got != want {
			t.Fatalf("normalize(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizePercent_Strings(t *testing.T) {
	cases := map[string]float64{
		"45%":   0.45,
		"100%":  1.0,
		" 80% ": 0.8,
		"80":    0.8,
		"":      0.0,
		"n/a":   0.0,
	}
	for in, want := range cases {
		if got := NormalizePercent(in); got != want {
			t.Fatalf("normalize(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizePercent_NilDefaultsToZero(t *testing.T) {
	if got := NormalizePercent(nil); got != 0.0 {
		t.Fatalf("normalize(nil) = %v, want 0", got)
	}
}

func TestDecodePosition_KnownAndUnknownCodes(t *testing.T) {
	want := map[int]string{1: "GK", 2: "DF", 3: "MF", 4: "FW"}
	for code, label := range want {
		if got := DecodePosition(code); got != label {
			t.Fatalf("decode(%d) = %q, want %q", code, got, label)
		}
	}
	if got := DecodePosition(99); got != "99" {
		t.Fatalf("decode(99) = %q, want pass-through", got)
	}
	if got := DecodePosition(0); got != "0" {
		t.Fatalf("decode(0) = %q, want pass-through", got)
	}
}

func TestDecodeAltPositions(t *testing.T) {
	cases := []struct {
		name   string
		codes  []int
		raw    string
		want   string
		wantOK bool
	}{
		{"structured list", []int{2, 4}, "", "DF, FW", true},
		{"structured empty", []int{}, "", "", true},
		{"bracketed string", nil, "[2, 4]", "DF, FW", true},
		{"bare csv", nil, "3,4", "MF, FW", true},
		{"csv skips junk", nil, "2, x, 4", "DF, FW", true},
		{"empty", nil, "", "", true},
		{"empty brackets", nil, "[]", "", true},
		{"unknown code passes through", nil, "[7]", "7", true},
		{"garbage brackets degrade", nil, "[a, b]", "[a, b]", false},
	}

	for _, tc := range cases {
		got, ok := DecodeAltPositions(tc.codes, tc.raw)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("%s: DecodeAltPositions(%v, %q) = (%q, %v), want (%q, %v)",
				tc.name, tc.codes, tc.raw, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestEngineer_ZeroPlayedDegradesToRawPoints(t *testing.T) {
	svc := NewFeatureService(nil)

	rows, _ := svc.Engineer(t.Context(), []analysis.Row{{
		PlayerID:   1,
		PlayerName: "Unused Sub",
		PointsHome: 0,
		PlayedHome: 0,
		PointsAway: 7,
		PlayedAway: 2,
	}})

	row := rows[0]
	if row.AvgPointsHome == nil || *row.AvgPointsHome != 0.0 {
		t.Fatalf("avg home = %v, want 0.0", row.AvgPointsHome)
	}
	if row.AvgPointsAway == nil || *row.AvgPointsAway != 3.5 {
		t.Fatalf("avg away = %v, want 3.5", row.AvgPointsAway)
	}
	if row.AvgPoints == nil || *row.AvgPoints != 3.5 {
		t.Fatalf("avg overall = %v, want 3.5", row.AvgPoints)
	}
}

func TestEngineer_ZeroDenominatorKeepsRawTotal(t *testing.T) {
	svc := NewFeatureService(nil)

	rows, _ := svc.Engineer(t.Context(), []analysis.Row{{
		PlayerID:   2,
		PointsHome: 9,
		PlayedHome: 0,
	}})

	if got := *rows[0].AvgPointsHome; got != 9.0 {
		t.Fatalf("avg home = %v, want the raw point total 9.0", got)
	}
}

func TestEngineer_RoundsFloatFeatures(t *testing.T) {
	svc := NewFeatureService(nil)

	chance := "67%"
	odds := 2.3456
	rows, _ := svc.Engineer(t.Context(), []analysis.Row{{
		PlayerID:         3,
		PointsHome:       10,
		PlayedHome:       3,
		StarterChanceRaw: &chance,
		OddsHomeWin:      &odds,
	}})

	row := rows[0]
	if *row.AvgPointsHome != 3.33 {
		t.Fatalf("avg home = %v, want 3.33", *row.AvgPointsHome)
	}
	if row.StarterProbability != 0.67 {
		t.Fatalf("starter probability = %v, want 0.67", row.StarterProbability)
	}
	if *row.OddsHomeWin != 2.35 {
		t.Fatalf("odds = %v, want 2.35", *row.OddsHomeWin)
	}
}

func TestEngineer_MalformedValuesRaiseNoticesNotErrors(t *testing.T) {
	svc := NewFeatureService(nil)

	chance := "maybe"
	rows, notices := svc.Engineer(t.Context(), []analysis.Row{{
		PlayerID:         4,
		AltPositionsRaw:  "[oops]",
		StarterChanceRaw: &chance,
	}})

	if rows[0].AltPositions != "[oops]" {
		t.Fatalf("alt positions = %q, want the raw value carried through", rows[0].AltPositions)
	}
	if rows[0].StarterProbability != 0.0 {
		t.Fatalf("starter probability = %v, want 0 fallback", rows[0].StarterProbability)
	}
	if len(notices) != 2 {
		t.Fatalf("expected 2 notices, got %d: %+v", len(notices), notices)
	}
	for _, n := range notices {
		if n.Code != noticeCodeMalformedValue {
			t.Fatalf("unexpected notice code %q", n.Code)
		}
	}
}

func TestEngineer_MissingSignalDefaultsProbabilityToZero(t *testing.T) {
	svc := NewFeatureService(nil)

	rows, notices := svc.Engineer(t.Context(), []analysis.Row{{PlayerID: 5}})
	if rows[0].StarterProbability != 0.0 {
		t.Fatalf("starter probability = %v, want 0", rows[0].StarterProbability)
	}
	if len(notices) != 0 {
		t.Fatalf("missing signal must not raise notices, got %+v", notices)
	}
}
