package history

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
)

const (
	indexPrefix   = "hist:"
	keyGamesSaved = "stats:games"
	keyMovesSaved = "stats:moves"
)

// Index maps each participant to the ids of their completed matches and
// keeps running counters. The JSON files remain the source of truth; the
// index only short-circuits directory scans.
type Index struct {
	db *badger.DB
}

// OpenIndex opens (or creates) the index database under dir.
func OpenIndex(dir string) (*Index, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Index{db: db}, nil
}

// Close closes the database.
func (ix *Index) Close() error {
	if ix.db != nil {
		return ix.db.Close()
	}
	return nil
}

// Add records a completed match for both participants and bumps the
// counters.
func (ix *Index) Add(matchID, white, black string, moveCount int) error {
	return ix.db.Update(func(txn *badger.Txn) error {
		for _, username := range []string{white, black} {
			if err := appendID(txn, username, matchID); err != nil {
				return err
			}
		}
		if err := bumpCounter(txn, keyGamesSaved, 1); err != nil {
			return err
		}
		return bumpCounter(txn, keyMovesSaved, int64(moveCount))
	})
}

// MatchIDs returns the recorded match ids for the username. A user with no
// entry yields ok=false so the caller can fall back to a directory scan.
func (ix *Index) MatchIDs(username string) (ids []string, ok bool, err error) {
	err = ix.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(indexPrefix + username))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		ok = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ids)
		})
	})
	return ids, ok && err == nil, err
}

// Stats returns the completed-game and recorded-move counters.
func (ix *Index) Stats() (games, moves int64, err error) {
	err = ix.db.View(func(txn *badger.Txn) error {
		var err error
		if games, err = readCounter(txn, keyGamesSaved); err != nil {
			return err
		}
		moves, err = readCounter(txn, keyMovesSaved)
		return err
	})
	return games, moves, err
}

func appendID(txn *badger.Txn, username, matchID string) error {
	key := []byte(indexPrefix + username)
	var ids []string

	item, err := txn.Get(key)
	if err == nil {
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ids)
		})
		if err != nil {
			return err
		}
	} else if err != badger.ErrKeyNotFound {
		return err
	}

	ids = append(ids, matchID)
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return txn.Set(key, raw)
}

func bumpCounter(txn *badger.Txn, key string, delta int64) error {
	n, err := readCounter(txn, key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(n + delta)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), raw)
}

func readCounter(txn *badger.Txn, key string) (int64, error) {
	item, err := txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n int64
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &n)
	})
	return n, err
}
