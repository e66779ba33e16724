package store

import (
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"

	"github.com/domino14/quantik/board"
)

const openAttempts = 3

// BadgerStore keeps records in a badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger database at dir. An empty dir
// gives an in-memory database.
func OpenBadger(dir string) (*BadgerStore, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLogger(nil)

	// the directory lock of a store that is still being closed by another
	// process goes away after a moment.
	attempts := uint(openAttempts)
	if dir == "" {
		attempts = 1
	}
	var db *badger.DB
	err := retry.Do(
		func() error {
			var err error
			db, err = badger.Open(opts)
			return err
		},
		retry.Attempts(attempts),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Str("dir", dir).Msg("badger-open-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("dir", dir).Msg("opened-badger-store")
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *BadgerStore) Put(recs ...Record) error {
	wb := s.db.NewWriteBatch()
	for _, r := range recs {
		val, err := encodeValue(r)
		if err != nil {
			wb.Cancel()
			return err
		}
		key := r.Key
		if err := wb.Set(key[:], val); err != nil {
			wb.Cancel()
			return err
		}
	}
	return wb.Flush()
}

func (s *BadgerStore) Get(key board.Key) (Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key[:])
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rec, err = decodeValue(key[:], val)
			return err
		})
	})
	return rec, err
}

func (s *BadgerStore) Has(key board.Key) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key[:])
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

func (s *BadgerStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (s *BadgerStore) ForEach(fn func(Record) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			var rec Record
			err := item.Value(func(val []byte) error {
				var err error
				rec, err = decodeValue(key, val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
