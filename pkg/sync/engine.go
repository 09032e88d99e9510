// Package sync reconciles the locally cached scrape against the user's
// Google Tasks, and exposes the add/delete/suppress operations that
// keep the two consistent.
package sync

import (
	"context"
	"log"
	"strings"

	"github.com/quacktask/quacktask/pkg/canvas"
	"github.com/quacktask/quacktask/pkg/google"
	"github.com/quacktask/quacktask/pkg/store"
)

// Engine implements the reconciliation pass and the single-item
// operations. It holds no state of its own beyond its collaborators:
// everything persistent lives in the cache store.
type Engine struct {
	dial  DialFunc
	cache *store.Store
}

func NewEngine(dial DialFunc, cache *store.Store) *Engine {
	return &Engine{dial: dial, cache: cache}
}

// matchFunc is one identity-matching strategy: given a local item and a
// remote task, it reports whether they are the same piece of work and
// under which identity key the match should be indexed.
type matchFunc func(it canvas.Item, t google.Task) (string, bool)

// Strategy order is a contract: exact title on the name key, exact
// title on the course-code key, then href substring in the notes.
// Titles before notes because titles are user-visible and least likely
// to false-positive; code key before notes because course codes are
// more stable than display names.
var matchers = []matchFunc{
	func(it canvas.Item, t google.Task) (string, bool) {
		key := it.NameKey()
		return key, t.Title == key
	},
	func(it canvas.Item, t google.Task) (string, bool) {
		key := it.CodeKey()
		return key, key != "" && t.Title == key
	},
	func(it canvas.Item, t google.Task) (string, bool) {
		return it.NameKey(), it.Href != "" && strings.Contains(t.Notes, it.Href)
	},
}

// matchTask finds the first remote task in pool that matches it,
// strategy-major: a lower-priority strategy is only consulted once no
// task at all matched the higher one.
func matchTask(it canvas.Item, pool []google.Task) (google.Task, string, bool) {
	for _, m := range matchers {
		for _, t := range pool {
			if key, ok := m(it, t); ok {
				return t, key, true
			}
		}
	}
	return google.Task{}, "", false
}

// Reconcile runs one full fetch-and-match pass: it pulls the entire
// remote task universe, rewrites every cached item's sync flags, and
// rebuilds the identity index. When the remote is unreachable (no
// credential, network down) it degrades pessimistically — all flags
// cleared, index emptied, Authed=false — instead of returning an error:
// a uniformly "unsynced" view is better than a half-synced one.
func (e *Engine) Reconcile(ctx context.Context) (Summary, error) {
	items, err := e.cache.Items()
	if err != nil {
		return Summary{}, err
	}
	if len(items) == 0 {
		// Nothing to match; don't touch the network.
		if err := e.cache.ReplaceIndex(nil); err != nil {
			return Summary{}, err
		}
		return Summary{Authed: true}, nil
	}

	universe, ok := e.fetchUniverse(ctx)
	if !ok {
		return e.degrade(items)
	}

	var active, completed []google.Task
	for _, t := range universe {
		if t.Status == google.StatusCompleted {
			completed = append(completed, t)
		} else {
			active = append(active, t)
		}
	}

	index := make(map[string]store.IndexEntry)
	found := 0
	for i := range items {
		it := &items[i]
		if t, key, matched := matchTask(*it, active); matched {
			it.InGoogle = true
			it.CompletedInGoogle = false
			it.GoogleTaskID = t.ID
			it.GoogleListID = t.ListID
			index[key] = store.IndexEntry{ListID: t.ListID, TaskID: t.ID}
			found++
			continue
		}
		if t, _, matched := matchTask(*it, completed); matched {
			// Remote wins for completion state. No index entry: a
			// completed task is not a re-add target.
			it.InGoogle = false
			it.CompletedInGoogle = true
			it.GoogleTaskID = t.ID
			it.GoogleListID = t.ListID
			continue
		}
		it.ClearSyncState()
	}

	if err := e.cache.SaveItems(items); err != nil {
		return Summary{}, err
	}
	if err := e.cache.ReplaceIndex(index); err != nil {
		return Summary{}, err
	}
	if err := e.cache.SetAuthed(true); err != nil {
		return Summary{}, err
	}

	return Summary{Synced: len(items), Found: found, Authed: true}, nil
}

// fetchUniverse pulls every task (active and completed) from every
// list. A list whose tasks cannot be fetched is skipped; only failing
// to enumerate the lists themselves counts as the remote being
// unreachable.
func (e *Engine) fetchUniverse(ctx context.Context) ([]google.Task, bool) {
	remote, err := e.dial(ctx)
	if err != nil {
		log.Printf("sync: remote unavailable: %v", err)
		return nil, false
	}

	lists, err := remote.ListTaskLists(ctx)
	if err != nil {
		log.Printf("sync: listing task lists failed: %v", err)
		return nil, false
	}

	var universe []google.Task
	for _, l := range lists {
		tasks, err := remote.ListTasks(ctx, l.ID, true)
		if err != nil {
			log.Printf("sync: skipping list %q: %v", l.Title, err)
			continue
		}
		universe = append(universe, tasks...)
	}
	return universe, true
}

// degrade clears every item's sync state and empties the index so the
// UI shows everything as not-yet-synced.
func (e *Engine) degrade(items []canvas.Item) (Summary, error) {
	for i := range items {
		items[i].ClearSyncState()
	}
	if err := e.cache.SaveItems(items); err != nil {
		return Summary{}, err
	}
	if err := e.cache.ReplaceIndex(nil); err != nil {
		return Summary{}, err
	}
	if err := e.cache.SetAuthed(false); err != nil {
		return Summary{}, err
	}
	return Summary{Synced: len(items), Found: 0, Authed: false}, nil
}

// Visible returns the items a user should see: suppressed keys and
// remotely completed work are filtered out. Suppressed items keep
// participating in reconciliation so their flags stay accurate for a
// later unhide.
func Visible(items []canvas.Item, suppressed map[string]bool) []canvas.Item {
	visible := make([]canvas.Item, 0, len(items))
	for _, it := range items {
		if it.CompletedInGoogle {
			continue
		}
		if suppressed[it.NameKey()] || (it.CodeKey() != "" && suppressed[it.CodeKey()]) {
			continue
		}
		visible = append(visible, it)
	}
	return visible
}
