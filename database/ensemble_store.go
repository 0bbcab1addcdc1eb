package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"vizchat/viz"
)

// EnsembleStore persists session datasets and chart specs in a sqlite file.
type EnsembleStore struct {
	db     *sql.DB
	logger func(string)
}

// NewEnsembleStore opens (or creates) the store at path and runs migrations.
func NewEnsembleStore(path string, logger func(string)) (*EnsembleStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %v", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS ensembles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			members INTEGER NOT NULL,
			points INTEGER NOT NULL,
			data TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS charts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			spec TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate store: %v", err)
		}
	}

	s := &EnsembleStore{db: db, logger: logger}
	s.log(fmt.Sprintf("[STORE] Opened %s", path))
	return s, nil
}

func (s *EnsembleStore) log(msg string) {
	if s.logger != nil {
		s.logger(msg)
	}
}

// SaveEnsemble stores an ensemble under the given id.
func (s *EnsembleStore) SaveEnsemble(id string, e *viz.Ensemble) error {
	data, err := json.Marshal(e.Members)
	if err != nil {
		return fmt.Errorf("failed to encode ensemble: %v", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO ensembles (id, name, members, points, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, e.Name, e.MemberCount(), e.Points, string(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save ensemble %s: %v", id, err)
	}
	s.log(fmt.Sprintf("[STORE] Saved ensemble %s (%dx%d)", id, e.MemberCount(), e.Points))
	return nil
}

// LoadEnsemble fetches an ensemble by id.
func (s *EnsembleStore) LoadEnsemble(id string) (*viz.Ensemble, error) {
	var name, data string
	var points int
	err := s.db.QueryRow(`SELECT name, points, data FROM ensembles WHERE id = ?`, id).
		Scan(&name, &points, &data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ensemble not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ensemble %s: %v", id, err)
	}

	var members [][]float64
	if err := json.Unmarshal([]byte(data), &members); err != nil {
		return nil, fmt.Errorf("failed to decode ensemble %s: %v", id, err)
	}
	return &viz.Ensemble{Name: name, Members: members, Points: points}, nil
}

// SaveChart stores a chart spec under the given id.
func (s *EnsembleStore) SaveChart(id, name, spec string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO charts (id, name, spec, created_at) VALUES (?, ?, ?, ?)`,
		id, name, spec, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save chart %s: %v", id, err)
	}
	s.log(fmt.Sprintf("[STORE] Saved chart %s (%s)", id, name))
	return nil
}

// LoadChart fetches a chart spec by id.
func (s *EnsembleStore) LoadChart(id string) (string, error) {
	var spec string
	err := s.db.QueryRow(`SELECT spec FROM charts WHERE id = ?`, id).Scan(&spec)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("chart not found: %s", id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load chart %s: %v", id, err)
	}
	return spec, nil
}

// Close releases the underlying database handle.
func (s *EnsembleStore) Close() error {
	return s.db.Close()
}
