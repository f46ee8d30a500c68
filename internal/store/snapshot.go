package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/changelog"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS layers (
	path TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	owner TEXT,
	visible INTEGER NOT NULL,
	ord INTEGER NOT NULL,
	body TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS commits (
	id TEXT PRIMARY KEY,
	seq INTEGER NOT NULL,
	ts TEXT,
	author TEXT,
	message TEXT,
	kind TEXT,
	parent TEXT,
	affected TEXT
);
CREATE INDEX IF NOT EXISTS idx_commits_seq ON commits(seq);
`

// Snapshot persists the full stage (layer envelopes plus raw texts) and an
// index of the commit log into a SQLite database.
func (s *Store) Snapshot(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer db.Close()

	if _, err := db.Exec(snapshotSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM layers`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM commits`); err != nil {
		return err
	}

	for _, l := range s.Stage.Layers {
		visible := 0
		if l.Visible {
			visible = 1
		}
		_, err := tx.Exec(
			`INSERT INTO layers (path, status, owner, visible, ord, body) VALUES (?, ?, ?, ?, ?, ?)`,
			l.FilePath, l.Status.String(), l.Owner, visible, l.Order, s.Stage.Texts[l.FilePath])
		if err != nil {
			return fmt.Errorf("insert layer %s: %w", l.FilePath, err)
		}
	}

	if text, ok := s.Stage.Texts[s.Changelog]; ok {
		entries, _ := changelog.Read(text)
		for _, e := range entries {
			_, err := tx.Exec(
				`INSERT INTO commits (id, seq, ts, author, message, kind, parent, affected) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				e.ID, e.Sequence, e.Timestamp.Format(time.RFC3339),
				e.Author, e.Message, e.Kind, e.Parent, strings.Join(e.AffectedPaths, "\n"))
			if err != nil {
				return fmt.Errorf("insert commit %s: %w", e.ID, err)
			}
		}
	}

	return tx.Commit()
}

// Restore replaces the stage with the contents of a snapshot database.
func (s *Store) Restore(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT path, status, owner, visible, ord, body FROM layers ORDER BY ord`)
	if err != nil {
		return fmt.Errorf("query layers: %w", err)
	}
	defer rows.Close()

	stage := scene.NewStage()
	for rows.Next() {
		var (
			l       scene.Layer
			status  string
			visible int
			body    string
		)
		if err := rows.Scan(&l.FilePath, &status, &l.Owner, &visible, &l.Order, &body); err != nil {
			return fmt.Errorf("scan layer: %w", err)
		}
		if l.Status, err = scene.ParseLayerStatus(status); err != nil {
			return err
		}
		l.Visible = visible != 0
		stage.AddLayer(l, body)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.Stage = stage
	return nil
}
