// Package store persists canonical positions keyed by their 18-byte
// canonical key. Two backends are available: badger (on disk or in memory)
// and sqlite.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/domino14/quantik/board"
	"github.com/domino14/quantik/tinymove"
)

const (
	BackendBadger = "badger"
	BackendMemory = "memory"
	BackendSqlite = "sqlite"
	BackendNone   = "none"
)

// RecordVersion is written into every stored value as "v".
const RecordVersion = 1

var (
	ErrNotFound       = errors.New("position not found")
	ErrUnknownBackend = errors.New("unknown store backend")
	ErrBadVersion     = errors.New("unsupported record version")
)

// Record is one canonical position. LastMove is the move that produced
// Representative, if known.
type Record struct {
	Key            board.Key         `json:"-"`
	Depth          int               `json:"depth"`
	Multiplicity   uint64            `json:"multiplicity"`
	ToMove         int               `json:"to_move"`
	Representative board.Bitboard    `json:"representative"`
	LastMove       tinymove.TinyMove `json:"last_move,omitempty"`
}

// Store is a canonical-position store. Put overwrites records with the
// same key.
type Store interface {
	Put(recs ...Record) error
	Get(key board.Key) (Record, error)
	Has(key board.Key) (bool, error)
	Count() (int, error)
	// ForEach visits records in key order. Returning an error stops the
	// iteration and is passed through.
	ForEach(fn func(Record) error) error
	Close() error
}

// Open opens a store. path is ignored by the memory backend. The none
// backend returns a nil Store and no error.
func Open(backend, path string) (Store, error) {
	var s Store
	var err error
	switch backend {
	case BackendBadger:
		s, err = OpenBadger(path)
	case BackendMemory:
		s, err = OpenBadger("")
	case BackendSqlite:
		s, err = OpenSqlite(path)
	case BackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

type storedValue struct {
	V int `json:"v"`
	Record
}

func encodeValue(r Record) ([]byte, error) {
	return json.Marshal(storedValue{V: RecordVersion, Record: r})
}

func decodeValue(key []byte, val []byte) (Record, error) {
	var sv storedValue
	if err := json.Unmarshal(val, &sv); err != nil {
		return Record{}, err
	}
	if sv.V != RecordVersion {
		return Record{}, fmt.Errorf("%w: %d", ErrBadVersion, sv.V)
	}
	if len(key) != board.KeySize {
		return Record{}, fmt.Errorf("bad key length %d", len(key))
	}
	r := sv.Record
	copy(r.Key[:], key)
	return r, nil
}
