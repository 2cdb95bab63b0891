// Package eventstore keeps a ledger of pipeline runs in SQLite and projects
// it into run summaries.
package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

const (
	runStatusRunning = "running"
	runStatusFailed  = "failed"
)

// RunSummary is a read model of one run.
type RunSummary struct {
	RunID         string        `json:"run_id"`
	Command       string        `json:"command,omitempty"`
	Status        string        `json:"status"` // running, failed, or the completed run's outcome
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	Duration      time.Duration `json:"duration,omitempty"`
	Articles      int           `json:"articles"`
	Artifacts     []string      `json:"artifacts,omitempty"`
	Pages         int           `json:"pages"`
	PageFailures  int           `json:"page_failures"`
	Pushed        bool          `json:"pushed"`
	Commit        string        `json:"commit,omitempty"`
	StatusUpdated int           `json:"status_updated"`
	StatusFailed  int           `json:"status_failed"`
	ErrorStage    string        `json:"error_stage,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

// RunHistoryProjection rebuilds run summaries from stored events.
type RunHistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	runs    map[string]*RunSummary
	history []*RunSummary // newest first
	maxSize int
}

func NewRunHistoryProjection(store Store, maxHistorySize int) *RunHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &RunHistoryProjection{
		store:   store,
		runs:    make(map[string]*RunSummary),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
func (p *RunHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.runs = make(map[string]*RunSummary)
	p.history = nil
	for _, event := range events {
		p.applyEventLocked(event)
	}

	sort.SliceStable(p.history, func(i, j int) bool {
		return p.history[i].StartedAt.After(p.history[j].StartedAt)
	})
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	return nil
}

// Apply processes a single event.
func (p *RunHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

func (p *RunHistoryProjection) applyEventLocked(event Event) {
	runID := event.RunID()
	if runID == "" {
		return
	}

	summary, exists := p.runs[runID]
	if !exists {
		summary = &RunSummary{RunID: runID, Status: runStatusRunning, StartedAt: event.Timestamp()}
		p.runs[runID] = summary
		p.history = append([]*RunSummary{summary}, p.history...)
		if len(p.history) > p.maxSize {
			for _, dropped := range p.history[p.maxSize:] {
				delete(p.runs, dropped.RunID)
			}
			p.history = p.history[:p.maxSize]
		}
	}

	switch event.Type() {
	case TypeRunStarted:
		var payload RunStartedPayload
		if json.Unmarshal(event.Payload(), &payload) == nil {
			summary.Command = payload.Command
		}
		summary.StartedAt = event.Timestamp()

	case TypeArticlesExtracted:
		var payload ArticlesExtractedPayload
		if json.Unmarshal(event.Payload(), &payload) == nil {
			summary.Articles = payload.Count
		}

	case TypeArtifactsSynced:
		var payload ArtifactsSyncedPayload
		if json.Unmarshal(event.Payload(), &payload) == nil {
			summary.Artifacts = payload.Artifacts
			summary.Pages = payload.Pages
			summary.PageFailures = payload.PageFailures
		}

	case TypeSitePublished:
		var payload SitePublishedPayload
		if json.Unmarshal(event.Payload(), &payload) == nil {
			summary.Pushed = payload.Pushed
			summary.Commit = payload.Commit
			if payload.Error != "" {
				summary.ErrorStage = "publish"
				summary.ErrorMessage = payload.Error
			}
		}

	case TypeStatusUpdated:
		var payload StatusUpdatedPayload
		if json.Unmarshal(event.Payload(), &payload) == nil {
			summary.StatusUpdated = payload.Updated
			summary.StatusFailed = payload.Failed
		}

	case TypeRunCompleted:
		p.completeLocked(summary, event)
		var payload RunCompletedPayload
		if json.Unmarshal(event.Payload(), &payload) == nil && payload.Outcome != "" {
			summary.Status = payload.Outcome
		}

	case TypeRunFailed:
		p.completeLocked(summary, event)
		summary.Status = runStatusFailed
		var payload RunFailedPayload
		if json.Unmarshal(event.Payload(), &payload) == nil {
			summary.ErrorStage = payload.Stage
			summary.ErrorMessage = payload.Error
		}
	}
}

func (p *RunHistoryProjection) completeLocked(summary *RunSummary, event Event) {
	done := event.Timestamp()
	summary.CompletedAt = &done
	summary.Duration = done.Sub(summary.StartedAt)
}

// GetHistory returns copies of the run summaries, newest first.
func (p *RunHistoryProjection) GetHistory() []RunSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]RunSummary, 0, len(p.history))
	for _, s := range p.history {
		out = append(out, *s)
	}
	return out
}

// GetRun returns the summary for one run.
func (p *RunHistoryProjection) GetRun(runID string) (RunSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.runs[runID]
	if !ok {
		return RunSummary{}, false
	}
	return *s, true
}
