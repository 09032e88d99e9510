package store

import "database/sql"

const (
	metaReady        = "ready"
	metaSelectedList = "selected_list"
	metaAuthed       = "authed"
)

func (s *Store) setMeta(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (s *Store) getMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *Store) setMetaBool(key string, v bool) error {
	value := "0"
	if v {
		value = "1"
	}
	return s.setMeta(key, value)
}

func (s *Store) getMetaBool(key string) (bool, error) {
	value, err := s.getMeta(key)
	return value == "1", err
}

// SetReady flips the readiness flag: true means the stored item set has
// been through a reconciliation pass since the last scrape, so what
// readers display is authoritative rather than a pre-sync snapshot.
func (s *Store) SetReady(ready bool) error { return s.setMetaBool(metaReady, ready) }

// Ready reports the readiness flag.
func (s *Store) Ready() (bool, error) { return s.getMetaBool(metaReady) }

// SetSelectedList stores the task list the user is targeting.
func (s *Store) SetSelectedList(listID string) error { return s.setMeta(metaSelectedList, listID) }

// SelectedList returns the stored target list ID, "" if never set.
func (s *Store) SelectedList() (string, error) { return s.getMeta(metaSelectedList) }

// SetAuthed records the outcome of the last credential check.
func (s *Store) SetAuthed(authed bool) error { return s.setMetaBool(metaAuthed, authed) }

// Authed reports whether the last remote contact was authenticated.
func (s *Store) Authed() (bool, error) { return s.getMetaBool(metaAuthed) }
