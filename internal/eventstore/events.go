package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
)

// Event type names.
const (
	TypeRunStarted        = "RunStarted"
	TypeArticlesExtracted = "ArticlesExtracted"
	TypeArtifactsSynced   = "ArtifactsSynced"
	TypeSitePublished     = "SitePublished"
	TypeStatusUpdated     = "StatusUpdated"
	TypeRunCompleted      = "RunCompleted"
	TypeRunFailed         = "RunFailed"
)

// RunStartedPayload identifies the command that started a run.
type RunStartedPayload struct {
	Command string `json:"command"`
}

type ArticlesExtractedPayload struct {
	Count      int      `json:"count"`
	ArticleIDs []string `json:"article_ids"`
}

type ArtifactsSyncedPayload struct {
	Artifacts    []string `json:"artifacts"`
	Pages        int      `json:"pages"`
	PageFailures int      `json:"page_failures"`
}

// SitePublishedPayload records the publish step whether or not it succeeded.
type SitePublishedPayload struct {
	Pushed bool   `json:"pushed"`
	Commit string `json:"commit,omitempty"`
	Error  string `json:"error,omitempty"`
}

type StatusUpdatedPayload struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

type RunCompletedPayload struct {
	Outcome    string `json:"outcome"`
	DurationMS int64  `json:"duration_ms"`
}

type RunFailedPayload struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}

func newEvent(runID, eventType string, payload any) (*BaseEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.EventStoreError("failed to marshal " + eventType + " payload").
			WithCause(err).
			WithContext("run_id", runID).
			Build()
	}
	return &BaseEvent{
		EventRunID:     runID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   data,
	}, nil
}

func NewRunStarted(runID, command string) (*BaseEvent, error) {
	return newEvent(runID, TypeRunStarted, RunStartedPayload{Command: command})
}

func NewArticlesExtracted(runID string, ids []string) (*BaseEvent, error) {
	if ids == nil {
		ids = []string{}
	}
	return newEvent(runID, TypeArticlesExtracted, ArticlesExtractedPayload{Count: len(ids), ArticleIDs: ids})
}

func NewArtifactsSynced(runID string, artifacts []string, pages, pageFailures int) (*BaseEvent, error) {
	return newEvent(runID, TypeArtifactsSynced, ArtifactsSyncedPayload{Artifacts: artifacts, Pages: pages, PageFailures: pageFailures})
}

// NewSitePublished records the publish outcome. publishErr may be nil.
func NewSitePublished(runID string, pushed bool, commit string, publishErr error) (*BaseEvent, error) {
	p := SitePublishedPayload{Pushed: pushed, Commit: commit}
	if publishErr != nil {
		p.Error = publishErr.Error()
	}
	return newEvent(runID, TypeSitePublished, p)
}

func NewStatusUpdated(runID string, updated, failed int) (*BaseEvent, error) {
	return newEvent(runID, TypeStatusUpdated, StatusUpdatedPayload{Updated: updated, Failed: failed})
}

func NewRunCompleted(runID, outcome string, duration time.Duration) (*BaseEvent, error) {
	return newEvent(runID, TypeRunCompleted, RunCompletedPayload{Outcome: outcome, DurationMS: duration.Milliseconds()})
}

func NewRunFailed(runID, stage string, runErr error) (*BaseEvent, error) {
	p := RunFailedPayload{Stage: stage}
	if runErr != nil {
		p.Error = runErr.Error()
	}
	return newEvent(runID, TypeRunFailed, p)
}
