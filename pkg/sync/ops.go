package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quacktask/quacktask/pkg/canvas"
	"github.com/quacktask/quacktask/pkg/google"
	"github.com/quacktask/quacktask/pkg/store"
)

// ErrNoList means neither the caller nor the stored selection names a
// target task list.
var ErrNoList = errors.New("no task list selected")

// AddParams describes a single-item push into Google Tasks. Key is the
// item's identity key and becomes the remote title. Notes is the
// identity anchor carried in the remote task (the item's href); the key
// itself is prepended so a later pass can re-identify the task even if
// the user edits its title. DueOverride, when set, wins over the
// scraped due date — the prompt-for-a-date flow for grading items.
type AddParams struct {
	Key         string
	ListID      string
	Notes       string
	DueOverride string
}

// Add creates exactly one remote task for p.Key and synchronously
// records it in the index and on the matching cached item, so callers
// can show "now in Google Tasks" without waiting for the next full
// pass.
func (e *Engine) Add(ctx context.Context, p AddParams) (store.IndexEntry, error) {
	if p.Key == "" {
		return store.IndexEntry{}, fmt.Errorf("add: empty identity key")
	}

	listID, err := e.resolveList(p.ListID)
	if err != nil {
		return store.IndexEntry{}, err
	}

	items, err := e.cache.Items()
	if err != nil {
		return store.IndexEntry{}, err
	}
	itemIdx := -1
	for i := range items {
		if items[i].MatchesKey(p.Key) {
			itemIdx = i
			break
		}
	}

	due := ""
	if p.DueOverride != "" {
		due, _ = canvas.NormalizeDue(p.DueOverride)
	} else if itemIdx >= 0 {
		// Unparseable dates are omitted, never invented.
		due, _ = canvas.NormalizeDue(items[itemIdx].Due)
	}

	remote, err := e.dial(ctx)
	if err != nil {
		return store.IndexEntry{}, err
	}

	created, err := remote.CreateTask(ctx, google.CreateParams{
		ListID: listID,
		Title:  p.Key,
		Notes:  anchorNotes(p.Key, p.Notes),
		Due:    due,
	})
	if err != nil {
		return store.IndexEntry{}, err
	}

	entry := store.IndexEntry{ListID: listID, TaskID: created.ID}
	if err := e.cache.SetIndexEntry(p.Key, entry); err != nil {
		return entry, err
	}
	if itemIdx >= 0 {
		it := &items[itemIdx]
		it.InGoogle = true
		it.CompletedInGoogle = false
		it.GoogleTaskID = created.ID
		it.GoogleListID = listID
		if err := e.cache.SaveItems(items); err != nil {
			return entry, err
		}
	}
	return entry, nil
}

// Delete removes the remote task for key. A task that is already gone
// upstream (deleted through the Google UI) still counts as success and
// clears local state; any other failure leaves the index and flags
// untouched so the caller can retry.
func (e *Engine) Delete(ctx context.Context, key, listID string) error {
	if key == "" {
		return fmt.Errorf("delete: empty identity key")
	}

	entry, indexed, err := e.cache.IndexEntry(key)
	if err != nil {
		return err
	}

	remote, err := e.dial(ctx)
	if err != nil {
		return err
	}

	if !indexed {
		// Index miss: fall back to a live lookup in the target list
		// before concluding the task does not exist.
		listID, err = e.resolveList(listID)
		if err != nil {
			return err
		}
		tasks, err := remote.ListTasks(ctx, listID, true)
		if err != nil {
			return err
		}
		hit := false
		for _, t := range tasks {
			if t.Title == key || (t.Notes != "" && strings.Contains(t.Notes, key)) {
				entry = store.IndexEntry{ListID: listID, TaskID: t.ID}
				hit = true
				break
			}
		}
		if !hit {
			return &google.NotFoundError{Op: "sync.Delete", Err: fmt.Errorf("no task matches %q", key)}
		}
	}

	if err := remote.DeleteTask(ctx, entry.ListID, entry.TaskID); err != nil && !google.IsNotFound(err) {
		return err
	}

	return e.clearLocal(key)
}

// Logout wipes every trace of the remote session from the cache —
// flags, index, selected list, authed marker — without contacting the
// network; there is nothing to reconcile against anymore.
func (e *Engine) Logout() error {
	items, err := e.cache.Items()
	if err != nil {
		return err
	}
	for i := range items {
		items[i].ClearSyncState()
	}
	if err := e.cache.SaveItems(items); err != nil {
		return err
	}
	if err := e.cache.ReplaceIndex(nil); err != nil {
		return err
	}
	if err := e.cache.SetSelectedList(""); err != nil {
		return err
	}
	return e.cache.SetAuthed(false)
}

// clearLocal removes the index entry for key and clears the flags on
// the matching cached item.
func (e *Engine) clearLocal(key string) error {
	if err := e.cache.RemoveIndexEntry(key); err != nil {
		return err
	}
	items, err := e.cache.Items()
	if err != nil {
		return err
	}
	changed := false
	for i := range items {
		if items[i].MatchesKey(key) {
			items[i].ClearSyncState()
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}
	return e.cache.SaveItems(items)
}

// resolveList picks the target list: explicit argument first, then the
// stored selection.
func (e *Engine) resolveList(listID string) (string, error) {
	if listID != "" {
		return listID, nil
	}
	selected, err := e.cache.SelectedList()
	if err != nil {
		return "", err
	}
	if selected == "" {
		return "", ErrNoList
	}
	return selected, nil
}

// anchorNotes prepends the identity key to the caller's notes so the
// created task stays re-identifiable by notes substring.
func anchorNotes(key, notes string) string {
	if notes == "" {
		return key
	}
	return key + "\n" + notes
}
