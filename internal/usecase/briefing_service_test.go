package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dani537/fantasy-crew/internal/domain/analysis"
	"github.com/dani537/fantasy-crew/internal/domain/news"
	"github.com/dani537/fantasy-crew/internal/domain/season"
	"github.com/dani537/fantasy-crew/internal/domain/standings"
)

func newsItem(title string) news.Item {
	return news.Item{Published: "29/08/2026", Title: title}
}

type echoWriter struct {
	gotBrief string
	err      error
}

func (w *echoWriter) Write(_ context.Context, brief string) (string, error) {
	w.gotBrief = brief
	if w.err != nil {
		return "", w.err
	}
	return "REPORT: " + brief, nil
}

func TestSquadBrief_RequiresTeamName(t *testing.T) {
	svc := NewBriefingService(nil, nil)

	_, err := svc.SquadBrief(t.Context(), BriefInput{UserTeamName: ""})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a blank team name, got %v", err)
	}
}

func TestSquadBrief_FiltersOnOwnership(t *testing.T) {
	svc := NewBriefingService(nil, nil)

	mine, theirs := "Rocket Squad", "Someone Else"
	master := []analysis.Row{
		{PlayerID: 1, PlayerName: "Jon Doe", Position: "MF", OwnerName: &mine},
		{PlayerID: 2, PlayerName: "Marco Ruiz", Position: "FW", OwnerName: &theirs},
		{PlayerID: 3, PlayerName: "Paul Keeper", Position: "GK"},
	}

	brief, err := svc.SquadBrief(t.Context(), BriefInput{UserTeamName: "Rocket Squad", Master: master})
	if err != nil {
		t.Fatalf("squad brief: %v", err)
	}

	if !strings.Contains(brief, "Jon Doe") {
		t.Fatalf("owned player missing from brief:\n%s", brief)
	}
	if strings.Contains(brief, "Marco Ruiz") || strings.Contains(brief, "Paul Keeper") {
		t.Fatalf("brief leaked players the user does not own:\n%s", brief)
	}
	if !strings.Contains(brief, "Players owned: 1") {
		t.Fatalf("squad size missing:\n%s", brief)
	}
}

func TestSquadBrief_EmptySquadIsNotAnError(t *testing.T) {
	svc := NewBriefingService(nil, nil)

	brief, err := svc.SquadBrief(t.Context(), BriefInput{UserTeamName: "Rocket Squad"})
	if err != nil {
		t.Fatalf("empty squad must not fail: %v", err)
	}
	if !strings.Contains(brief, "No players found") {
		t.Fatalf("empty squad not stated:\n%s", brief)
	}
}

func TestSquadBrief_CapsHeadlines(t *testing.T) {
	svc := NewBriefingService(nil, nil)

	in := BriefInput{UserTeamName: "Rocket Squad", MaxNews: 2}
	for _, title := range []string{"one", "two", "three"} {
		in.News = append(in.News, newsItem(title))
	}

	brief, err := svc.SquadBrief(t.Context(), in)
	if err != nil {
		t.Fatalf("squad brief: %v", err)
	}
	if !strings.Contains(brief, "two") || strings.Contains(brief, "three") {
		t.Fatalf("headline cap not honoured:\n%s", brief)
	}
}

func TestSquadBrief_RendersLeagueTableAndOpenEvents(t *testing.T) {
	svc := NewBriefingService(nil, nil)

	end := time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC)
	brief, err := svc.SquadBrief(t.Context(), BriefInput{
		UserTeamName: "Rocket Squad",
		Standings: []standings.Entry{
			{UserID: 9, Name: "Rocket Squad", Points: 412, Position: 1, TeamValue: 92_000_000},
			{UserID: 10, Name: "Bench Warmers", Points: 388, Position: 2, TeamValue: 80_500_000},
		},
		ActiveEvents: []season.Event{
			{ID: 55, Name: "Jornada 2", Status: "started", Type: "round", End: &end},
		},
	})
	if err != nil {
		t.Fatalf("squad brief: %v", err)
	}

	if !strings.Contains(brief, "LEAGUE TABLE") {
		t.Fatalf("brief missing league table section:\n%s", brief)
	}
	if !strings.Contains(brief, "#1 Rocket Squad points=412 value=92000000 (you)") {
		t.Fatalf("user's own row not marked:\n%s", brief)
	}
	if strings.Contains(brief, "Bench Warmers points=388 value=80500000 (you)") {
		t.Fatalf("rival row must not be marked as the user's:\n%s", brief)
	}
	if !strings.Contains(brief, "EVENTS IN PLAY") || !strings.Contains(brief, "Jornada 2 status=started ends=2026-08-30 21:00") {
		t.Fatalf("open events not rendered:\n%s", brief)
	}
}

func TestWriteReport_DelegatesToWriter(t *testing.T) {
	writer := &echoWriter{}
	svc := NewBriefingService(writer, nil)

	report, err := svc.WriteReport(t.Context(), BriefInput{UserTeamName: "Rocket Squad"})
	if err != nil {
		t.Fatalf("write report: %v", err)
	}
	if !strings.HasPrefix(report, "REPORT: ") {
		t.Fatalf("writer output not returned: %q", report)
	}
	if !strings.Contains(writer.gotBrief, "Rocket Squad") {
		t.Fatalf("writer did not receive the brief: %q", writer.gotBrief)
	}
}

func TestWriteReport_NoWriterConfigured(t *testing.T) {
	svc := NewBriefingService(nil, nil)

	_, err := svc.WriteReport(t.Context(), BriefInput{UserTeamName: "Rocket Squad"})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}
