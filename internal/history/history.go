// Package history manages the watch history: the last reported progress
// percent of each movie, kept in a SQLite database so playback can resume.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"cinebox/internal/media"
)

// MaxEntries caps how many movies the history remembers.
const MaxEntries = 20

const schema = `
CREATE TABLE IF NOT EXISTS progress (
	movie_id   TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT '',
	percent    REAL NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS progress_updated_at ON progress (updated_at DESC);
`

// Store is a SQLite-backed history store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	// One writer; the player saves from its event loop.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns all entries, most recently updated first.
func (s *Store) Load() ([]media.HistoryEntry, error) {
	rows, err := s.db.Query(`SELECT movie_id, title, source_url, percent, updated_at
		FROM progress ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var entries []media.HistoryEntry
	for rows.Next() {
		var e media.HistoryEntry
		if err := rows.Scan(&e.MovieID, &e.Title, &e.SourceURL, &e.Percent, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return entries, nil
}

// Percent returns the stored progress for a movie, or 0 when unknown.
func (s *Store) Percent(movieID string) (float64, error) {
	var percent float64
	err := s.db.QueryRow(`SELECT percent FROM progress WHERE movie_id = ?`, movieID).Scan(&percent)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading progress for %s: %w", movieID, err)
	}
	return percent, nil
}

// Save writes or updates an entry, moving it to the front of the history,
// and trims the history to MaxEntries.
func (s *Store) Save(entry media.HistoryEntry) error {
	entry.UpdatedAt = s.now().UnixMilli()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting history update: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO progress (movie_id, title, source_url, percent, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(movie_id) DO UPDATE SET
			title = excluded.title,
			source_url = excluded.source_url,
			percent = excluded.percent,
			updated_at = excluded.updated_at`,
		entry.MovieID, entry.Title, entry.SourceURL, entry.Percent, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("writing history: %w", err)
	}

	_, err = tx.Exec(`DELETE FROM progress WHERE movie_id NOT IN (
		SELECT movie_id FROM progress ORDER BY updated_at DESC, rowid DESC LIMIT ?)`, MaxEntries)
	if err != nil {
		return fmt.Errorf("trimming history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history: %w", err)
	}
	return nil
}

// Remove deletes an entry from the history.
func (s *Store) Remove(movieID string) error {
	if _, err := s.db.Exec(`DELETE FROM progress WHERE movie_id = ?`, movieID); err != nil {
		return fmt.Errorf("removing %s from history: %w", movieID, err)
	}
	return nil
}

// Recorder returns a progress callback that persists percent changes for one
// movie. Repeated reports of the same percent are not written again.
func (s *Store) Recorder(movie media.Movie, onError func(error)) func(percent float64) {
	last := -1.0
	return func(percent float64) {
		if percent == last {
			return
		}
		last = percent
		err := s.Save(media.HistoryEntry{
			MovieID:   movie.ID,
			Title:     movie.Title,
			SourceURL: movie.EmbedURL,
			Percent:   percent,
		})
		if err != nil && onError != nil {
			onError(err)
		}
	}
}

// FormatForDisplay creates display strings for fzf selection from history entries.
func FormatForDisplay(entries []media.HistoryEntry) []string {
	var items []string
	for _, e := range entries {
		display := e.Title
		if display == "" {
			display = e.MovieID
		}
		if e.Percent > 0 {
			display += fmt.Sprintf(" [%.0f%%]", e.Percent)
		}
		items = append(items, display)
	}
	return items
}
