package canvas

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// KeySeparator joins the course part and the assignment title in an
// identity key. It must match what the scraper-side UI renders, since
// keys double as remote task titles.
const KeySeparator = " → "

// Item is one piece of outstanding course work as reported by the
// scraper. The whole set is replaced on every scrape cycle; the
// InGoogle/CompletedInGoogle/GoogleTaskID/GoogleListID fields are
// recomputed by reconciliation and carry no scrape identity.
type Item struct {
	Course     string `json:"course"`
	CourseCode string `json:"courseCode,omitempty"`
	Assignment string `json:"assignment"`
	Href       string `json:"href,omitempty"`
	Due        string `json:"rfc3339Due,omitempty"`
	DueText    string `json:"dueText,omitempty"`
	IsGrading  bool   `json:"isGrading,omitempty"`

	InGoogle          bool   `json:"inGoogleTasks,omitempty"`
	CompletedInGoogle bool   `json:"completedInGoogleTasks,omitempty"`
	GoogleTaskID      string `json:"googleTaskId,omitempty"`
	GoogleListID      string `json:"googleListId,omitempty"`
}

// NameKey returns the canonical identity key for the item,
// "{course} → {assignment}". It is total: empty fields produce a
// degenerate but still usable key.
func (it Item) NameKey() string {
	return strings.TrimSpace(it.Course + KeySeparator + it.Assignment)
}

// CodeKey returns the course-code variant of the identity key, or ""
// when the item has no course code. Course codes change less often than
// display names, so callers matching against remote state should try
// this key too.
func (it Item) CodeKey() string {
	if it.CourseCode == "" {
		return ""
	}
	return strings.TrimSpace(it.CourseCode + KeySeparator + it.Assignment)
}

// MatchesKey reports whether key is one of the item's identity keys.
func (it Item) MatchesKey(key string) bool {
	if key == "" {
		return false
	}
	return key == it.NameKey() || key == it.CodeKey()
}

// ClearSyncState drops all reconciliation-owned fields.
func (it *Item) ClearSyncState() {
	it.InGoogle = false
	it.CompletedInGoogle = false
	it.GoogleTaskID = ""
	it.GoogleListID = ""
}

// ParseItems decodes a scraped item set from r. The scraper emits a
// single JSON array.
func ParseItems(r io.Reader) ([]Item, error) {
	var items []Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode scraped items: %w", err)
	}
	return items, nil
}
