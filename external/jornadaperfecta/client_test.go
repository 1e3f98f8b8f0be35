package jornadaperfecta

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

const feedBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Jornada Perfecta</title>
  <item>
    <title>Parte de lesionados</title>
    <link>https://example.com/lesionados</link>
    <pubDate>Fri, 28 Aug 2026 09:30:00 +0200</pubDate>
    <category>Lesiones</category>
    <category>LaLiga</category>
    <description>&lt;p&gt;El   delantero  sufre &lt;strong&gt;molestias&lt;/strong&gt;
    musculares.&lt;/p&gt;</description>
  </item>
</channel>
</rss>`

func TestLatest_CleansEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/rss+xml")
		w.Write([]byte(feedBody))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{FeedURL: server.URL})

	items, err := client.Latest(t.Context())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Title != "Parte de lesionados" {
		t.Fatalf("title = %q", item.Title)
	}
	if item.Summary != "El delantero sufre molestias musculares." {
		t.Fatalf("summary not cleaned: %q", item.Summary)
	}
	if item.Published != "2026-08-28 07:30" {
		t.Fatalf("published = %q, want UTC-normalized short form", item.Published)
	}
	if len(item.Tags) != 2 || item.Tags[0] != "Lesiones" {
		t.Fatalf("tags = %v", item.Tags)
	}
}

func TestCleanSummary_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("palabra ", 60) // well past the cap

	got := CleanSummary(long)
	if utf8.RuneCountInString(got) != summaryLimit {
		t.Fatalf("truncated length = %d, want %d", utf8.RuneCountInString(got), summaryLimit)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncation must end with an ellipsis: %q", got[len(got)-10:])
	}
}

func TestCleanSummary_ShortTextUntouched(t *testing.T) {
	if got := CleanSummary("sin etiquetas"); got != "sin etiquetas" {
		t.Fatalf("short summary changed: %q", got)
	}
}
