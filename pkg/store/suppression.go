package store

// Suppress adds an identity key to the blacklist. Re-suppressing is a
// no-op.
func (s *Store) Suppress(key string) error {
	_, err := s.db.Exec(
		`INSERT INTO suppression (key) VALUES (?) ON CONFLICT(key) DO NOTHING`, key)
	return err
}

// Unsuppress removes an identity key from the blacklist.
func (s *Store) Unsuppress(key string) error {
	_, err := s.db.Exec(`DELETE FROM suppression WHERE key = ?`, key)
	return err
}

// Suppressed returns all blacklisted keys, sorted.
func (s *Store) Suppressed() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM suppression ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// SuppressedSet returns the blacklist as a membership set.
func (s *Store) SuppressedSet() (map[string]bool, error) {
	keys, err := s.Suppressed()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set, nil
}
