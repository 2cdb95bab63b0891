package notify

import "time"

// SitePublishedEvent is sent after the publish branch was pushed.
// Downstream consumers use it to trigger deploys or cache purges.
type SitePublishedEvent struct {
	RunID     string             `json:"run_id"`
	Commit    string             `json:"commit"`
	Branch    string             `json:"branch"`
	Articles  []PublishedArticle `json:"articles"`
	Timestamp time.Time          `json:"timestamp"`
}

// PublishedArticle identifies one article included in the push.
type PublishedArticle struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	URL   string `json:"url"`
}
