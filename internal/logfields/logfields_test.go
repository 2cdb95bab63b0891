package logfields

import (
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Stage", KeyStage, "sync", Stage("sync")},
		{"ArticleID", KeyArticleID, "abc", ArticleID("abc")},
		{"Slug", KeySlug, "notes/go", Slug("notes/go")},
		{"Title", KeyTitle, "Go Notes", Title("Go Notes")},
		{"Artifact", KeyArtifact, "sitemap", Artifact("sitemap")},
		{"BlockID", KeyBlockID, "b1", BlockID("b1")},
		{"BlockType", KeyBlockType, "table", BlockType("table")},
		{"DatabaseID", KeyDatabaseID, "db", DatabaseID("db")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"URL", KeyURL, "http://example", URL("http://example")},
		{"Branch", KeyBranch, "publish", Branch("publish")},
		{"Remote", KeyRemote, "origin", Remote("origin")},
		{"Status", KeyStatus, "published", Status("published")},
		{"Commit", KeyCommit, "abc123", Commit("abc123")},
		{"Outcome", KeyOutcome, "noop", Outcome("noop")},
		{"Subject", KeySubject, "ncms.site.published", Subject("ncms.site.published")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric & float helpers.
func TestNumericHelpers(t *testing.T) {
	if v := Count(5); v.Key != KeyCount {
		t.Fatalf("Count key mismatch: %s", v.Key)
	}
	if v := Attempt(2); v.Key != KeyAttempt {
		t.Fatalf("Attempt key mismatch: %s", v.Key)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
