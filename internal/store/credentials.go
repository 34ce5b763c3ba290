package store

import (
	"database/sql"

	"github.com/nobita6986/BatchTranscriber/internal/domain"
)

func (db *DB) CreateCredential(cred *domain.CredentialConfig) error {
	query := `INSERT INTO credentials (id, name, secret_value, created_at)
		VALUES (:id, :name, :secret_value, :created_at)`

	_, err := db.NamedExec(query, cred)
	return err
}

func (db *DB) GetCredential(id string) (*domain.CredentialConfig, error) {
	query := `SELECT * FROM credentials WHERE id = ?`

	cred := &domain.CredentialConfig{}
	err := db.Get(cred, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cred, nil
}

func (db *DB) ListCredentials() ([]*domain.CredentialConfig, error) {
	query := `SELECT * FROM credentials ORDER BY created_at ASC, id ASC`

	var creds []*domain.CredentialConfig
	err := db.Select(&creds, query)
	return creds, err
}

func (db *DB) DeleteCredential(id string) error {
	query := `DELETE FROM credentials WHERE id = ?`
	_, err := db.Exec(query, id)
	return err
}
