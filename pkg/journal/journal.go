// Package journal persists the commits of shadow trees in a bbolt database.
//
// Every surface gets its own bucket; entries are keyed by revision number in
// big-endian order, so cursors walk them in commit order.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/mounting"
)

const bucketPrefix = "surface/"

// Entry is one journaled commit.
type Entry struct {
	Surface   int32           `json:"surface"`
	Revision  int64           `json:"revision"`
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Lines     []string        `json:"lines"`
	Mutations json.RawMessage `json:"mutations"`
}

// Journal is a commit journal backed by one database file.
type Journal struct {
	db  *bolt.DB
	log *slog.Logger
}

// Open opens or creates the journal at path.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.New("journal.Open", errors.KindJournal, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{db: db, log: logger}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func bucketName(surface int32) []byte {
	return []byte(bucketPrefix + strconv.Itoa(int(surface)))
}

func marshalRevision(n int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n))
	return b
}

func unmarshalRevision(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key))
}

// Record stores rev under surface, replacing an entry of the same number.
func (j *Journal) Record(surface int32, rev mounting.Revision) error {
	const op = "journal.Journal.Record"
	muts, err := json.Marshal(rev.Mutations)
	if err != nil {
		return errors.New(op, errors.KindJournal, err)
	}
	lines := make([]string, len(rev.Mutations))
	for i, m := range rev.Mutations {
		lines[i] = m.String()
	}
	data, err := json.Marshal(Entry{
		Surface:   surface,
		Revision:  rev.Number,
		ID:        rev.ID.String(),
		Timestamp: rev.Timestamp,
		Lines:     lines,
		Mutations: muts,
	})
	if err != nil {
		return errors.New(op, errors.KindJournal, err)
	}
	err = j.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName(surface))
		if err != nil {
			return err
		}
		return b.Put(marshalRevision(rev.Number), data)
	})
	if err != nil {
		return &errors.ShadowError{Op: op, Kind: errors.KindJournal, Surface: surface, Err: err, Timestamp: time.Now()}
	}
	return nil
}

// ShadowTreeDidCommit implements mounting.MountingDelegate. Failures go to
// the global error handler; the commit itself is not affected.
func (j *Journal) ShadowTreeDidCommit(tree *mounting.ShadowTree, rev mounting.Revision) {
	surface := int32(tree.SurfaceID())
	if err := j.Record(surface, rev); err != nil {
		var se *errors.ShadowError
		if errors.As(err, &se) {
			errors.Report(se)
		}
		return
	}
	j.log.Debug("journaled", "surface_id", surface, "revision", rev.Number, "mutations", len(rev.Mutations))
}

// Get returns the entry of revision n on surface.
func (j *Journal) Get(surface int32, n int64) (Entry, error) {
	const op = "journal.Journal.Get"
	var e Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(surface))
		if b == nil {
			return fmt.Errorf("surface %d: %w", surface, errors.ErrNotFound)
		}
		v := b.Get(marshalRevision(n))
		if v == nil {
			return fmt.Errorf("revision %d: %w", n, errors.ErrNotFound)
		}
		return json.Unmarshal(v, &e)
	})
	if err != nil {
		kind := errors.KindJournal
		if errors.Is(err, errors.ErrNotFound) {
			kind = errors.KindNotFound
		}
		return Entry{}, &errors.ShadowError{Op: op, Kind: kind, Surface: surface, Err: err, Timestamp: time.Now()}
	}
	return e, nil
}

// Iterate calls f with the entries of surface from revision from onwards, in
// commit order, until f returns false.
func (j *Journal) Iterate(surface int32, from int64, f func(Entry) bool) error {
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(surface))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Seek(marshalRevision(from)); k != nil; k, v = c.Next() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("revision %d: %w", unmarshalRevision(k), err)
			}
			if !f(e) {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return &errors.ShadowError{Op: "journal.Journal.Iterate", Kind: errors.KindJournal, Surface: surface, Err: err, Timestamp: time.Now()}
	}
	return nil
}

// List returns every entry of surface in commit order.
func (j *Journal) List(surface int32) ([]Entry, error) {
	var out []Entry
	err := j.Iterate(surface, 0, func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out, err
}

// Surfaces returns the journaled surfaces in ascending order.
func (j *Journal) Surfaces() ([]int32, error) {
	var out []int32
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			id, ok := parseBucket(name)
			if ok {
				out = append(out, id)
			}
			return nil
		})
	})
	if err != nil {
		return nil, errors.New("journal.Journal.Surfaces", errors.KindJournal, err)
	}
	slices.Sort(out)
	return out, nil
}

func parseBucket(name []byte) (int32, bool) {
	s := string(name)
	if len(s) <= len(bucketPrefix) || s[:len(bucketPrefix)] != bucketPrefix {
		return 0, false
	}
	n, err := strconv.ParseInt(s[len(bucketPrefix):], 10, 32)
	return int32(n), err == nil
}
