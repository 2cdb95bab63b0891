package eventstore

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
)

const testRunID = "run-1"

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEventStoreAppendAndRetrieve(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	payload := []byte(`{"command":"publish"}`)

	if err := store.Append(ctx, testRunID, TypeRunStarted, payload, map[string]string{"host": "ci"}); err != nil {
		t.Fatalf("failed to append event: %v", err)
	}
	if err := store.Append(ctx, "other", TypeRunStarted, payload, nil); err != nil {
		t.Fatalf("failed to append event: %v", err)
	}

	events, err := store.GetByRunID(ctx, testRunID)
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.RunID() != testRunID {
		t.Errorf("expected run_id %s, got %s", testRunID, event.RunID())
	}
	if event.Type() != TypeRunStarted {
		t.Errorf("expected type %s, got %s", TypeRunStarted, event.Type())
	}
	if !bytes.Equal(event.Payload(), payload) {
		t.Errorf("expected payload %s, got %s", payload, event.Payload())
	}
	if event.Metadata()["host"] != "ci" {
		t.Errorf("expected metadata host=ci, got %v", event.Metadata())
	}
	if event.ID() == 0 {
		t.Error("expected an assigned event id")
	}
}

func TestEventStoreGetRange(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	before := time.Now().Add(-time.Second)
	for _, typ := range []string{TypeRunStarted, TypeRunCompleted} {
		if err := store.Append(ctx, testRunID, typ, nil, nil); err != nil {
			t.Fatalf("append %s: %v", typ, err)
		}
	}
	after := time.Now().Add(time.Second)

	events, err := store.GetRange(ctx, before, after)
	if err != nil {
		t.Fatalf("get range: %v", err)
	}
	if len(events) != 2 || events[0].Type() != TypeRunStarted || events[1].Type() != TypeRunCompleted {
		t.Fatalf("unexpected events %v", events)
	}
	if string(events[0].Payload()) != "{}" {
		t.Errorf("nil payload should be stored as an empty object, got %s", events[0].Payload())
	}

	none, err := store.GetRange(ctx, after.Add(time.Hour), after.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("get range: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no events outside the range, got %d", len(none))
	}
}

func TestEventStorePersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "ncms.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Append(t.Context(), testRunID, TypeRunStarted, nil, nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	events, err := reopened.GetByRunID(t.Context(), testRunID)
	if err != nil || len(events) != 1 {
		t.Fatalf("expected persisted event, got %d events, err %v", len(events), err)
	}
}

func TestEventStoreClosedIsClassified(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = store.Close()

	err = store.Append(t.Context(), testRunID, TypeRunStarted, nil, nil)
	if !errors.HasCategory(err, errors.CategoryEventStore) {
		t.Fatalf("expected eventstore error, got %v", err)
	}
}
