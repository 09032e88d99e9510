package sync

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quacktask/quacktask/pkg/canvas"
	"github.com/quacktask/quacktask/pkg/google"
	"github.com/quacktask/quacktask/pkg/store"
)

func TestAddCreatesAnchoredTask(t *testing.T) {
	cache := newTestCache(t)
	mustReplaceItems(t, cache, []canvas.Item{
		{Course: "CS 101", Assignment: "HW1", Href: "https://example.edu/1", Due: "2025-09-10T03:59:00Z"},
	})
	remote := &fakeRemote{lists: []google.List{{ID: "l1"}}}
	engine := NewEngine(dialTo(remote), cache)

	entry, err := engine.Add(context.Background(), AddParams{
		Key:    "CS 101 → HW1",
		ListID: "l1",
		Notes:  "https://example.edu/1",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(remote.created) != 1 {
		t.Fatalf("expected one create, got %d", len(remote.created))
	}
	created := remote.created[0]
	if created.Title != "CS 101 → HW1" {
		t.Errorf("unexpected title %q", created.Title)
	}
	if created.Notes != "CS 101 → HW1\nhttps://example.edu/1" {
		t.Errorf("notes missing the key anchor: %q", created.Notes)
	}
	wantDue, ok := canvas.NormalizeDue("2025-09-10T03:59:00Z")
	if !ok {
		t.Fatal("fixture due did not normalize")
	}
	if created.Due != wantDue {
		t.Errorf("due = %q, want %q", created.Due, wantDue)
	}

	got, ok, _ := cache.IndexEntry("CS 101 → HW1")
	if !ok || got != entry {
		t.Errorf("index entry not recorded: %+v ok=%v", got, ok)
	}
	items, _ := cache.Items()
	if !items[0].InGoogle || items[0].GoogleTaskID != entry.TaskID {
		t.Errorf("item flags not updated: %+v", items[0])
	}
}

func TestAddDueOverrideWins(t *testing.T) {
	cache := newTestCache(t)
	mustReplaceItems(t, cache, []canvas.Item{
		{Course: "CS 101", Assignment: "HW1", Due: "2025-09-10T03:59:00Z"},
	})
	remote := &fakeRemote{lists: []google.List{{ID: "l1"}}}
	engine := NewEngine(dialTo(remote), cache)

	_, err := engine.Add(context.Background(), AddParams{
		Key:         "CS 101 → HW1",
		ListID:      "l1",
		DueOverride: "12/25/2025",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	due, err := time.Parse(time.RFC3339, remote.created[0].Due)
	if err != nil {
		t.Fatalf("created due %q not RFC 3339: %v", remote.created[0].Due, err)
	}
	if due.Year() != 2025 || due.Month() != time.December || due.Day() != 25 {
		t.Errorf("override ignored, due = %q", remote.created[0].Due)
	}
}

func TestAddUnknownKeyStillCreates(t *testing.T) {
	cache := newTestCache(t)
	remote := &fakeRemote{lists: []google.List{{ID: "l1"}}}
	engine := NewEngine(dialTo(remote), cache)

	if _, err := engine.Add(context.Background(), AddParams{Key: "Custom → Errand", ListID: "l1"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(remote.created) != 1 || remote.created[0].Title != "Custom → Errand" {
		t.Errorf("unexpected creates: %+v", remote.created)
	}
	if _, ok, _ := cache.IndexEntry("Custom → Errand"); !ok {
		t.Error("ad-hoc create must still be indexed")
	}
}

func TestAddFallsBackToSelectedList(t *testing.T) {
	cache := newTestCache(t)
	cache.SetSelectedList("chosen")
	remote := &fakeRemote{}
	engine := NewEngine(dialTo(remote), cache)

	if _, err := engine.Add(context.Background(), AddParams{Key: "Custom → Errand"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if remote.created[0].ListID != "chosen" {
		t.Errorf("expected the stored selection, got %q", remote.created[0].ListID)
	}
}

func TestAddWithoutListFailsFast(t *testing.T) {
	cache := newTestCache(t)
	remote := &fakeRemote{}
	engine := NewEngine(dialTo(remote), cache)

	_, err := engine.Add(context.Background(), AddParams{Key: "Custom → Errand"})
	if !errors.Is(err, ErrNoList) {
		t.Fatalf("expected ErrNoList, got %v", err)
	}
	if len(remote.created) != 0 {
		t.Error("no create should be attempted without a list")
	}
}

func TestDeleteViaIndex(t *testing.T) {
	cache := newTestCache(t)
	cache.SaveItems([]canvas.Item{
		{Course: "CS 101", Assignment: "HW1", InGoogle: true, GoogleTaskID: "t1", GoogleListID: "l1"},
	})
	cache.SetIndexEntry("CS 101 → HW1", store.IndexEntry{ListID: "l1", TaskID: "t1"})
	remote := &fakeRemote{
		tasks: map[string][]google.Task{
			"l1": {{ListID: "l1", ID: "t1", Title: "CS 101 → HW1"}},
		},
	}
	engine := NewEngine(dialTo(remote), cache)

	if err := engine.Delete(context.Background(), "CS 101 → HW1", ""); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(remote.deleted) != 1 || remote.deleted[0] != "l1/t1" {
		t.Errorf("unexpected deletes: %v", remote.deleted)
	}
	if _, ok, _ := cache.IndexEntry("CS 101 → HW1"); ok {
		t.Error("index entry should be removed")
	}
	items, _ := cache.Items()
	if items[0].InGoogle || items[0].GoogleTaskID != "" {
		t.Errorf("item sync state not cleared: %+v", items[0])
	}
}

func TestDeleteFallsBackToLiveLookup(t *testing.T) {
	cache := newTestCache(t)
	cache.SetSelectedList("l1")
	remote := &fakeRemote{
		tasks: map[string][]google.Task{
			"l1": {{ListID: "l1", ID: "t9", Title: "renamed", Notes: "CS 101 → HW1\nhttps://example.edu/1"}},
		},
	}
	engine := NewEngine(dialTo(remote), cache)

	if err := engine.Delete(context.Background(), "CS 101 → HW1", ""); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(remote.deleted) != 1 || remote.deleted[0] != "l1/t9" {
		t.Errorf("unexpected deletes: %v", remote.deleted)
	}
}

// A task already gone on the remote side counts as a successful delete.
func TestDeleteGoneTaskIsSoftSuccess(t *testing.T) {
	cache := newTestCache(t)
	cache.SetIndexEntry("CS 101 → HW1", store.IndexEntry{ListID: "l1", TaskID: "t1"})
	remote := &fakeRemote{
		deleteErr: &google.NotFoundError{Op: "test", Err: errors.New("gone")},
	}
	engine := NewEngine(dialTo(remote), cache)

	if err := engine.Delete(context.Background(), "CS 101 → HW1", ""); err != nil {
		t.Fatalf("expected soft success, got %v", err)
	}
	if _, ok, _ := cache.IndexEntry("CS 101 → HW1"); ok {
		t.Error("index entry should be removed after a soft-success delete")
	}
}

func TestDeleteTransportFailureKeepsState(t *testing.T) {
	cache := newTestCache(t)
	cache.SetIndexEntry("CS 101 → HW1", store.IndexEntry{ListID: "l1", TaskID: "t1"})
	remote := &fakeRemote{
		deleteErr: &google.TransportError{Op: "test", StatusCode: 503},
	}
	engine := NewEngine(dialTo(remote), cache)

	err := engine.Delete(context.Background(), "CS 101 → HW1", "")
	if err == nil {
		t.Fatal("expected the transport error to surface")
	}
	if _, ok, _ := cache.IndexEntry("CS 101 → HW1"); !ok {
		t.Error("index entry must survive a failed delete")
	}
}

func TestDeleteMissingEverywhere(t *testing.T) {
	cache := newTestCache(t)
	cache.SetSelectedList("l1")
	remote := &fakeRemote{tasks: map[string][]google.Task{"l1": {}}}
	engine := NewEngine(dialTo(remote), cache)

	err := engine.Delete(context.Background(), "CS 101 → HW1", "")
	if !google.IsNotFound(err) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}

func TestLogoutClearsEverythingLocally(t *testing.T) {
	cache := newTestCache(t)
	mustReplaceItems(t, cache, []canvas.Item{{Course: "CS 101", Assignment: "HW1"}})
	items := mustItems(t, cache)
	items[0].InGoogle = true
	items[0].GoogleTaskID = "t1"
	cache.SaveItems(items)
	cache.SetIndexEntry("CS 101 → HW1", store.IndexEntry{ListID: "l1", TaskID: "t1"})
	cache.SetSelectedList("l1")
	cache.SetAuthed(true)

	// Dial must never be reached: logout is purely local.
	engine := NewEngine(dialFailing(errors.New("network reached during logout")), cache)
	if err := engine.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	got, _ := cache.Items()
	if got[0].InGoogle || got[0].GoogleTaskID != "" {
		t.Errorf("item sync state not cleared: %+v", got[0])
	}
	if index, _ := cache.Index(); len(index) != 0 {
		t.Errorf("index not cleared: %v", index)
	}
	if sel, _ := cache.SelectedList(); sel != "" {
		t.Errorf("selected list not cleared: %q", sel)
	}
	if authed, _ := cache.Authed(); authed {
		t.Error("authed flag not cleared")
	}
}

// Adding an item and deleting it again leaves a subsequent
// reconciliation pass exactly where it would have been.
func TestAddThenDeleteIsInvisibleToReconcile(t *testing.T) {
	cache := newTestCache(t)
	cache.SetSelectedList("l1")
	mustReplaceItems(t, cache, []canvas.Item{
		{Course: "CS 101", Assignment: "HW1"},
	})
	remote := &fakeRemote{lists: []google.List{{ID: "l1"}}}
	engine := NewEngine(dialTo(remote), cache)
	ctx := context.Background()

	if _, err := engine.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	before := mustItems(t, cache)

	if _, err := engine.Add(ctx, AddParams{Key: "CS 101 → HW1"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := engine.Delete(ctx, "CS 101 → HW1", ""); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := engine.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	after := mustItems(t, cache)
	if len(before) != len(after) {
		t.Fatalf("item count changed: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("item %d changed: %+v vs %+v", i, before[i], after[i])
		}
	}
	if index, _ := cache.Index(); len(index) != 0 {
		t.Errorf("index not back to empty: %v", index)
	}
}

func TestAnchorNotes(t *testing.T) {
	if got := anchorNotes("CS 101 → HW1", ""); got != "CS 101 → HW1" {
		t.Errorf("bare key: got %q", got)
	}
	got := anchorNotes("CS 101 → HW1", "https://example.edu/1")
	if !strings.HasPrefix(got, "CS 101 → HW1\n") || !strings.Contains(got, "https://example.edu/1") {
		t.Errorf("anchored notes: got %q", got)
	}
}

func mustItems(t *testing.T, cache *store.Store) []canvas.Item {
	t.Helper()
	items, err := cache.Items()
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	return items
}
