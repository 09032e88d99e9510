package store

import "database/sql"

// IndexEntry locates the remote task an identity key maps to. Entries
// exist only for items currently believed active in Google Tasks.
type IndexEntry struct {
	ListID string
	TaskID string
}

// IndexEntry looks up the remote location for key.
func (s *Store) IndexEntry(key string) (IndexEntry, bool, error) {
	var e IndexEntry
	err := s.db.QueryRow(
		`SELECT list_id, task_id FROM sync_index WHERE key = ?`, key,
	).Scan(&e.ListID, &e.TaskID)
	if err == sql.ErrNoRows {
		return IndexEntry{}, false, nil
	}
	if err != nil {
		return IndexEntry{}, false, err
	}
	return e, true, nil
}

// SetIndexEntry records (or overwrites) the remote location for key.
func (s *Store) SetIndexEntry(key string, e IndexEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_index (key, list_id, task_id) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			list_id = excluded.list_id,
			task_id = excluded.task_id
	`, key, e.ListID, e.TaskID)
	return err
}

// RemoveIndexEntry drops the mapping for key. Absent keys are fine.
func (s *Store) RemoveIndexEntry(key string) error {
	_, err := s.db.Exec(`DELETE FROM sync_index WHERE key = ?`, key)
	return err
}

// ReplaceIndex swaps the whole index for the one a reconciliation pass
// rebuilt.
func (s *Store) ReplaceIndex(index map[string]IndexEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sync_index`); err != nil {
		return err
	}
	for key, e := range index {
		if _, err := tx.Exec(
			`INSERT INTO sync_index (key, list_id, task_id) VALUES (?, ?, ?)`,
			key, e.ListID, e.TaskID,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Index returns the full key → remote-task mapping.
func (s *Store) Index() (map[string]IndexEntry, error) {
	rows, err := s.db.Query(`SELECT key, list_id, task_id FROM sync_index`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[string]IndexEntry)
	for rows.Next() {
		var key string
		var e IndexEntry
		if err := rows.Scan(&key, &e.ListID, &e.TaskID); err != nil {
			return nil, err
		}
		index[key] = e
	}
	return index, rows.Err()
}
