package storage

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/lcolaco/placetap/internal/model"
)

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS businesses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		website TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT NOT NULL,
		place_id TEXT,
		lat REAL,
		lng REAL,
		distance_m REAL,
		query TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(place_id, query)
	);
	CREATE INDEX IF NOT EXISTS idx_businesses_query ON businesses(query);
	CREATE INDEX IF NOT EXISTS idx_businesses_name ON businesses(name);
	`
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// InsertBatch stores businesses, skipping ones already present for the
// same query. Returns how many rows were actually inserted.
func (s *Store) InsertBatch(businesses []model.Business) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO businesses
		(name, address, website, phone, email, place_id, lat, lng, distance_m, query)
		VALUES (?,?,?,?,?,?,?,?,?,?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, b := range businesses {
		res, err := stmt.Exec(
			b.Name, b.Address, b.Website, b.Phone, b.Email,
			b.PlaceID, b.Lat, b.Lng, b.DistanceM, b.Query,
		)
		if err != nil {
			continue
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing tx: %w", err)
	}

	return inserted, nil
}

// All returns every stored business ordered by insertion.
func (s *Store) All() ([]model.Business, error) {
	rows, err := s.db.Query(`
		SELECT name, address, website, phone, email,
		       place_id, lat, lng, distance_m, query
		FROM businesses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying businesses: %w", err)
	}
	defer rows.Close()

	var businesses []model.Business
	for rows.Next() {
		var b model.Business
		if err := rows.Scan(
			&b.Name, &b.Address, &b.Website, &b.Phone, &b.Email,
			&b.PlaceID, &b.Lat, &b.Lng, &b.DistanceM, &b.Query,
		); err != nil {
			continue
		}
		businesses = append(businesses, b)
	}
	return businesses, rows.Err()
}

func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM businesses").Scan(&count)
	return count, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load opens a project database and returns its contents. Used by the
// export subcommand and the results explorer.
func Load(dbPath string) ([]model.Business, error) {
	s, err := NewStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.All()
}
