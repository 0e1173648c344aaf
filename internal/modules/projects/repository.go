package projects

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when no project has the requested id
var ErrNotFound = errors.New("project not found")

// Repository handles project document persistence
// Database: app.db (projects table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// NewRepository creates a new project repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "projects").Logger(),
		now: time.Now,
	}
}

// List returns every stored document, most recently updated first
func (r *Repository) List(ctx context.Context) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT data FROM projects ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}

		doc, err := decodeDocument(data)
		if err != nil {
			// One corrupt row must not hide the others
			r.log.Warn().Err(err).Msg("Skipping unreadable project document")
			continue
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return docs, nil
}

// Get returns the document with the given id, or ErrNotFound
func (r *Repository) Get(ctx context.Context, id string) (Document, error) {
	var data string
	err := r.db.QueryRowContext(ctx, "SELECT data FROM projects WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", id, err)
	}

	return decodeDocument(data)
}

// Upsert stores the document under its id, replacing any previous version
func (r *Repository) Upsert(ctx context.Context, doc Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	doc.Normalize()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, doc.ID(), doc.Name(), string(data), r.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save project %s: %w", doc.ID(), err)
	}

	r.log.Info().Str("id", doc.ID()).Str("name", doc.Name()).Msg("Saved project")
	return nil
}

// Delete removes the document. Deleting an unknown id is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	return nil
}

func decodeDocument(data string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}
	return doc, nil
}
