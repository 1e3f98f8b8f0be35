package usecase

// Notice is a structured, non-fatal observation raised while processing a
// run: a value that could not be parsed, an entity that stayed
// unresolved, a fixture dropped from enrichment. Notices never abort a
// run; only a structurally missing source does.
type Notice struct {
	Stage  string
	Code   string
	Detail string
}

const (
	noticeCodeUnresolvedTeam    = "unresolved_team"
	noticeCodeUnresolvedPlayer  = "unresolved_player"
	noticeCodeDroppedFixture    = "dropped_fixture"
	noticeCodeMalformedValue    = "malformed_value"
	noticeCodeEmptySource       = "empty_source"
	noticeCodeSnapshotWriteFail = "snapshot_write_failed"
)
