package sync

import (
	"context"
	"sync"

	"github.com/quacktask/quacktask/pkg/canvas"
	"github.com/quacktask/quacktask/pkg/google"
	"github.com/quacktask/quacktask/pkg/store"
)

// Orchestrator is the stable entry point for every external trigger:
// scrape arrival, explicit refresh, list selection, login state,
// per-item add/delete, suppression management. Reconciliation passes
// never interleave — the in-flight guard makes a pass requested while
// one is running wait and then run afresh, which also covers the
// "re-run after the current pass" semantics. Mutating single-item
// operations take the same guard because every writer rewrites whole
// cached collections.
type Orchestrator struct {
	engine *Engine
	cache  *store.Store
	dial   DialFunc

	// guards reconciliation and all cache-mutating operations
	mu sync.Mutex
}

func NewOrchestrator(engine *Engine, cache *store.Store, dial DialFunc) *Orchestrator {
	return &Orchestrator{engine: engine, cache: cache, dial: dial}
}

// StoreScraped replaces the cached item set with a fresh scrape and
// reconciles it. The readiness flag is set even when reconciliation
// degraded or failed — an indefinite "loading" state is worse than a
// pessimistic one.
func (o *Orchestrator) StoreScraped(ctx context.Context, items []canvas.Item) (Summary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.cache.ReplaceItems(items); err != nil {
		return Summary{}, err
	}
	summary, err := o.engine.Reconcile(ctx)
	if rerr := o.cache.SetReady(true); rerr != nil && err == nil {
		err = rerr
	}
	return summary, err
}

// SyncNow re-runs reconciliation over the unchanged item set.
func (o *Orchestrator) SyncNow(ctx context.Context) (Summary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.engine.Reconcile(ctx)
}

// SelectList stores a new target list and reconciles so the items'
// flags reflect the newly selected list's contents.
func (o *Orchestrator) SelectList(ctx context.Context, listID string) (Summary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.cache.SetSelectedList(listID); err != nil {
		return Summary{}, err
	}
	return o.engine.Reconcile(ctx)
}

// Logout clears all session-derived local state without touching the
// network.
func (o *Orchestrator) Logout() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.engine.Logout()
}

// Lists fetches the user's task lists. A missing or invalid credential
// is reported as authed=false, not as an error.
func (o *Orchestrator) Lists(ctx context.Context) (authed bool, lists []google.List, err error) {
	remote, err := o.dial(ctx)
	if err != nil {
		if google.IsAuth(err) {
			return false, nil, nil
		}
		return false, nil, err
	}
	lists, err = remote.ListTaskLists(ctx)
	if err != nil {
		if google.IsAuth(err) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return true, lists, nil
}

// Add pushes one item into Google Tasks.
func (o *Orchestrator) Add(ctx context.Context, p AddParams) (store.IndexEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.engine.Add(ctx, p)
}

// Delete removes one item's remote task.
func (o *Orchestrator) Delete(ctx context.Context, key, listID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.engine.Delete(ctx, key, listID)
}

// Hide suppresses an identity key permanently (until unhidden).
func (o *Orchestrator) Hide(key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cache.Suppress(key)
}

// Unhide removes a key from the suppression set.
func (o *Orchestrator) Unhide(key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cache.Unsuppress(key)
}

// Hidden lists the suppressed identity keys.
func (o *Orchestrator) Hidden() ([]string, error) {
	return o.cache.Suppressed()
}

// VisibleItems returns the deduplicated, de-noised view: the cached
// item set minus suppressed and remotely completed work.
func (o *Orchestrator) VisibleItems() ([]canvas.Item, error) {
	items, err := o.cache.Items()
	if err != nil {
		return nil, err
	}
	suppressed, err := o.cache.SuppressedSet()
	if err != nil {
		return nil, err
	}
	return Visible(items, suppressed), nil
}
