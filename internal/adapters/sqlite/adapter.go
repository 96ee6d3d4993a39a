// Package sqlite provides a SQLite-backed implementation of the track catalog port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
	"github.com/ewilliams-labs/soundclusters/internal/core/ports"
)

var _ ports.TrackCatalog = (*Adapter)(nil)

// Adapter implements the track catalog for SQLite
type Adapter struct {
	db *sql.DB
}

// trackColumns is the select list shared by every track query.
const trackColumns = `id, title, artist,
	danceability, energy, loudness, speechiness, acousticness,
	instrumentalness, liveness, valence, tempo, duration_ms, cluster`

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// Every connection to ":memory:" is its own database.
	if storagePath == ":memory:" || strings.Contains(storagePath, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Load replaces the catalog with tracks in a single transaction. Row order is
// kept in row_idx so sample and cluster queries return dataset order.
func (a *Adapter) Load(ctx context.Context, tracks []domain.Track) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM tracks"); err != nil {
		return fmt.Errorf("failed to clear tracks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (
			row_idx, id, title, artist,
			danceability, energy, loudness, speechiness, acousticness,
			instrumentalness, liveness, valence, tempo, duration_ms, cluster
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tracks {
		f := t.Features
		if _, err := stmt.ExecContext(
			ctx,
			i,
			t.ID,
			t.Title,
			t.Artist,
			f.Danceability,
			f.Energy,
			f.Loudness,
			f.Speechiness,
			f.Acousticness,
			f.Instrumentalness,
			f.Liveness,
			f.Valence,
			f.Tempo,
			f.DurationMs,
			t.Cluster,
		); err != nil {
			return fmt.Errorf("failed to save track %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

func (a *Adapter) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return n, nil
}

// Sample returns the first limit rows in dataset order.
func (a *Adapter) Sample(ctx context.Context, limit int) ([]domain.Track, error) {
	return a.queryTracks(ctx, "SELECT "+trackColumns+" FROM tracks ORDER BY row_idx LIMIT ?", limit)
}

// ByCluster returns up to limit rows of one cluster in dataset order.
// A non-positive limit returns all of them.
func (a *Adapter) ByCluster(ctx context.Context, cluster int, limit int) ([]domain.Track, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	return a.queryTracks(ctx, "SELECT "+trackColumns+" FROM tracks WHERE cluster = ? ORDER BY row_idx LIMIT ?", cluster, limit)
}

// Track looks a single row up by id.
func (a *Adapter) Track(ctx context.Context, id string) (domain.Track, error) {
	row := a.db.QueryRowContext(ctx, "SELECT "+trackColumns+" FROM tracks WHERE id = ? ORDER BY row_idx LIMIT 1", id)
	t, err := scanTrack(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Track{}, domain.ErrNotFound
		}
		return domain.Track{}, fmt.Errorf("failed to load track: %w", err)
	}
	return t, nil
}

// ClusterProfiles averages every feature per cluster.
func (a *Adapter) ClusterProfiles(ctx context.Context) ([]domain.ClusterProfile, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT
			cluster,
			COUNT(*),
			COALESCE(AVG(danceability), 0),
			COALESCE(AVG(energy), 0),
			COALESCE(AVG(loudness), 0),
			COALESCE(AVG(speechiness), 0),
			COALESCE(AVG(acousticness), 0),
			COALESCE(AVG(instrumentalness), 0),
			COALESCE(AVG(liveness), 0),
			COALESCE(AVG(valence), 0),
			COALESCE(AVG(tempo), 0),
			COALESCE(AVG(duration_ms), 0)
		FROM tracks
		GROUP BY cluster
		ORDER BY cluster ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load cluster profiles: %w", err)
	}
	defer rows.Close()

	var out []domain.ClusterProfile
	for rows.Next() {
		var p domain.ClusterProfile
		m := &p.Mean
		if err := rows.Scan(
			&p.Cluster,
			&p.Size,
			&m.Danceability,
			&m.Energy,
			&m.Loudness,
			&m.Speechiness,
			&m.Acousticness,
			&m.Instrumentalness,
			&m.Liveness,
			&m.Valence,
			&m.Tempo,
			&m.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cluster profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cluster profiles: %w", err)
	}
	return out, nil
}

func (a *Adapter) queryTracks(ctx context.Context, query string, args ...any) ([]domain.Track, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	out := []domain.Track{}
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tracks: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrack(s scanner) (domain.Track, error) {
	var (
		t      domain.Track
		title  sql.NullString
		artist sql.NullString
	)
	f := &t.Features
	err := s.Scan(
		&t.ID,
		&title,
		&artist,
		&f.Danceability,
		&f.Energy,
		&f.Loudness,
		&f.Speechiness,
		&f.Acousticness,
		&f.Instrumentalness,
		&f.Liveness,
		&f.Valence,
		&f.Tempo,
		&f.DurationMs,
		&t.Cluster,
	)
	if err != nil {
		return domain.Track{}, err
	}
	t.Title = title.String
	t.Artist = artist.String
	return t, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS tracks (
		row_idx INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		title TEXT,
		artist TEXT,
		danceability REAL NOT NULL,
		energy REAL NOT NULL,
		loudness REAL NOT NULL,
		speechiness REAL NOT NULL,
		acousticness REAL NOT NULL,
		instrumentalness REAL NOT NULL,
		liveness REAL NOT NULL,
		valence REAL NOT NULL,
		tempo REAL NOT NULL,
		duration_ms REAL NOT NULL,
		cluster INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tracks_cluster ON tracks (cluster, row_idx);
	CREATE INDEX IF NOT EXISTS idx_tracks_id ON tracks (id);
	`
	_, err := a.db.Exec(query)
	return err
}
