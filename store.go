package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/tidwall/gjson"
)

// Store persists the best solution per search and the range of prefix
// lengths already searched, so an interrupted run can pick up where it
// stopped.
type Store struct {
	db *badger.DB
}

// StoredSolution is the persisted summary of a solution.
type StoredSolution struct {
	Length  int
	Prefix  string
	Program string
	Exit    int
}

// Progress is a contiguous range of fully searched prefix lengths and the
// exclusive length bound in force when the last of them finished. Every
// program in the range shorter than Bound has been seen.
type Progress struct {
	From    int `json:"from"`
	Through int `json:"through"`
	Bound   int `json:"bound"`
}

// Covers reports whether a search starting at length start under bound can
// skip the recorded range.
func (p Progress) Covers(start, bound int) bool {
	return p.From <= start && start <= p.Through && bound <= p.Bound
}

// OpenStore opens (creating if needed) a store in dir. An empty dir gives an
// in-memory store.
func OpenStore(dir string) (*Store, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// SearchKey identifies a search by its text and every bound that changes
// which programs are found. Prefix-length bounds are excluded so a resumed
// run may extend them.
func SearchKey(goal []byte, cfg Config) string {
	h := xxhash.New()
	_, _ = h.Write(goal)
	_, _ = fmt.Fprintf(h, "|%d|%d|%d|%d|%d|%d|%d|%d|%t|%t",
		cfg.MinTape, cfg.MaxTape, cfg.MaxNodeCost, cfg.MaxLoops,
		cfg.MinSlen, cfg.MaxSlen, cfg.MinClen, cfg.MaxClen, cfg.UniqueCells, cfg.TailLoops)
	return strconv.FormatUint(h.Sum64(), 16)
}

func bestKey(key string) []byte { return []byte("best/" + key) }
func doneKey(key string) []byte { return []byte("done/" + key) }

// SaveBest records sol unless a solution at least as short is stored.
func (s *Store) SaveBest(key string, sol *Solution) error {
	rec, err := EncodeSolution(sol)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(bestKey(key))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			prev, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if l := gjson.GetBytes(prev, "length"); l.Exists() && int(l.Int()) <= sol.Length {
				return nil
			}
		}
		return txn.Set(bestKey(key), rec)
	})
	if err != nil {
		return fmt.Errorf("save best: %w", err)
	}
	return nil
}

// Best returns the stored best solution for key.
func (s *Store) Best(key string) (StoredSolution, bool, error) {
	var raw []byte
	ok, err := s.get(bestKey(key), &raw)
	if err != nil || !ok {
		return StoredSolution{}, false, err
	}
	r := gjson.ParseBytes(raw)
	return StoredSolution{
		Length:  int(r.Get("length").Int()),
		Prefix:  r.Get("prefix").String(),
		Program: r.Get("program").String(),
		Exit:    int(r.Get("exit").Int()),
	}, true, nil
}

// MarkDone records p as the searched range for key.
func (s *Store) MarkDone(key string, p Progress) error {
	rec, err := json.Marshal(p)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(doneKey(key), rec)
	})
	if err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	return nil
}

// Done returns the searched range recorded for key.
func (s *Store) Done(key string) (Progress, bool, error) {
	var raw []byte
	ok, err := s.get(doneKey(key), &raw)
	if err != nil || !ok {
		return Progress{}, false, err
	}
	r := gjson.ParseBytes(raw)
	if !r.IsObject() || !r.Get("through").Exists() || !r.Get("bound").Exists() {
		return Progress{}, false, fmt.Errorf("corrupt progress record %q", raw)
	}
	return Progress{
		From:    int(r.Get("from").Int()),
		Through: int(r.Get("through").Int()),
		Bound:   int(r.Get("bound").Int()),
	}, true, nil
}

func (s *Store) get(k []byte, dst *[]byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}
		*dst, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", k, err)
	}
	return true, nil
}
