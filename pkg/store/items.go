package store

import (
	"database/sql"

	"github.com/quacktask/quacktask/pkg/canvas"
)

// ReplaceItems swaps in a freshly scraped item set. Sync flags are
// dropped on the way in: a full replacement must never leak stale
// reconciliation state.
func (s *Store) ReplaceItems(items []canvas.Item) error {
	cleaned := make([]canvas.Item, len(items))
	copy(cleaned, items)
	for i := range cleaned {
		cleaned[i].ClearSyncState()
	}
	return s.writeItems(cleaned)
}

// SaveItems persists the item set as-is, flags included. Used after a
// reconciliation pass or a single-item add/delete.
func (s *Store) SaveItems(items []canvas.Item) error {
	return s.writeItems(items)
}

func (s *Store) writeItems(items []canvas.Item) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO items (position, course, course_code, assignment, href,
			due, due_text, is_grading, in_google, completed_in_google,
			google_task_id, google_list_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, it := range items {
		_, err := stmt.Exec(i, it.Course, it.CourseCode, it.Assignment, it.Href,
			it.Due, it.DueText, it.IsGrading, it.InGoogle, it.CompletedInGoogle,
			it.GoogleTaskID, it.GoogleListID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Items returns the stored item set in scrape order.
func (s *Store) Items() ([]canvas.Item, error) {
	rows, err := s.db.Query(`
		SELECT course, course_code, assignment, href, due, due_text,
			is_grading, in_google, completed_in_google,
			google_task_id, google_list_id
		FROM items ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]canvas.Item, error) {
	var items []canvas.Item
	for rows.Next() {
		var it canvas.Item
		err := rows.Scan(&it.Course, &it.CourseCode, &it.Assignment, &it.Href,
			&it.Due, &it.DueText, &it.IsGrading, &it.InGoogle,
			&it.CompletedInGoogle, &it.GoogleTaskID, &it.GoogleListID)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
