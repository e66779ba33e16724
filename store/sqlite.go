package store

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/domino14/quantik/board"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS positions (
	key BLOB PRIMARY KEY,
	depth INTEGER NOT NULL,
	to_move INTEGER NOT NULL,
	value BLOB NOT NULL
)`

// SqliteStore keeps records in a single sqlite table. The depth and
// player to move are also stored as columns so the file can be queried
// directly.
type SqliteStore struct {
	db *sql.DB
}

// OpenSqlite opens (or creates) the database file at path. ":memory:"
// gives a private in-memory database.
func OpenSqlite(path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection, so that an in-memory database is shared by every
	// statement.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug().Str("path", path).Msg("opened-sqlite-store")
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) Put(recs ...Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO positions (key, depth, to_move, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, r := range recs {
		val, err := encodeValue(r)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := stmt.Exec(r.Key[:], r.Depth, r.ToMove, val); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *SqliteStore) Get(key board.Key) (Record, error) {
	var val []byte
	err := s.db.QueryRow(`SELECT value FROM positions WHERE key = ?`, key[:]).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return decodeValue(key[:], val)
}

func (s *SqliteStore) Has(key board.Key) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM positions WHERE key = ?`, key[:]).Scan(&n)
	return n > 0, err
}

func (s *SqliteStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM positions`).Scan(&n)
	return n, err
}

func (s *SqliteStore) ForEach(fn func(Record) error) error {
	rows, err := s.db.Query(`SELECT key, value FROM positions ORDER BY key`)
	if err != nil {
		return err
	}
	defer rows.Close()
	// collect first: fn may call back into the store, and there is only
	// one connection.
	var recs []Record
	for rows.Next() {
		var key, val []byte
		if err := rows.Scan(&key, &val); err != nil {
			return err
		}
		rec, err := decodeValue(key, val)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()
	for _, r := range recs {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}
