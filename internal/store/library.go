package store

import (
	"database/sql"

	"github.com/nobita6986/BatchTranscriber/internal/domain"
)

func (db *DB) CreateLibraryItem(item *domain.LibraryItem) error {
	query := `INSERT INTO library_items (id, file_name, file_size, source, source_url, transcript, created_at)
		VALUES (:id, :file_name, :file_size, :source, :source_url, :transcript, :created_at)`

	_, err := db.NamedExec(query, item)
	return err
}

func (db *DB) GetLibraryItem(id string) (*domain.LibraryItem, error) {
	query := `SELECT * FROM library_items WHERE id = ?`

	item := &domain.LibraryItem{}
	err := db.Get(item, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListLibraryItems returns items newest first.
func (db *DB) ListLibraryItems(limit int) ([]*domain.LibraryItem, error) {
	query := `SELECT * FROM library_items ORDER BY created_at DESC, id DESC LIMIT ?`

	var items []*domain.LibraryItem
	err := db.Select(&items, query, limit)
	return items, err
}

func (db *DB) DeleteLibraryItem(id string) error {
	query := `DELETE FROM library_items WHERE id = ?`
	_, err := db.Exec(query, id)
	return err
}

func (db *DB) ClearLibrary() error {
	query := `DELETE FROM library_items`
	_, err := db.Exec(query)
	return err
}
