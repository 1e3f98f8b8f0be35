package news

// Item is one cleaned entry from the news feed, trimmed for downstream
// report briefs.
type Item struct {
	Published string
	Title     string
	Summary   string
	Link      string
	Tags      []string
}
