// Package history persists an append-only log of conflict resolution
// outcomes, so a user can audit what was kept, what was discarded, and
// which sequences failed half-way.
package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// dbDirPerm is the permission mode for the directory holding the
	// history database.
	dbDirPerm = fs.FileMode(0o700)

	// dbFilePerm is the permission mode for the database file.
	dbFilePerm = fs.FileMode(0o600)

	// dbOpenTimeout is the maximum time to wait for the bolt file lock.
	dbOpenTimeout = 5 * time.Second
)

var resolutionsBucket = []byte("resolutions")

// Record is one terminal resolution outcome.
type Record struct {
	// Group is the base path of the conflict group.
	Group string `json:"group"`
	// Action is the resolution action that was chosen.
	Action string `json:"action"`
	// Chosen is the variant the action applied to, if any.
	Chosen string `json:"chosen,omitempty"`
	// Original is the original file's path at resolution time.
	Original string `json:"original,omitempty"`
	// Outcome is the terminal state: resolved, failed-partial, manual.
	Outcome string `json:"outcome"`
	// Detail carries the failure message for failed sequences.
	Detail string `json:"detail,omitempty"`
	// Time is when the outcome was recorded.
	Time time.Time `json:"time"`
}

// Log is a bbolt-backed resolution history.
type Log struct {
	db *bolt.DB
}

// Open opens (or creates) the history database at the given path.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), dbDirPerm); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := bolt.Open(path, dbFilePerm, &bolt.Options{Timeout: dbOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening history database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(resolutionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating resolutions bucket: %w", err)
	}

	return &Log{db: db}, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Append records a resolution outcome. The record's Time is set to now
// when zero.
func (l *Log) Append(rec Record) error {
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding history record: %w", err)
	}

	return l.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(resolutionsBucket)

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("allocating history sequence: %w", err)
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		return bucket.Put(key, data)
	})
}

// Recent returns up to limit records, newest first. limit <= 0 returns
// everything.
func (l *Log) Recent(limit int) ([]Record, error) {
	var records []Record

	err := l.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(resolutionsBucket).Cursor()

		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}

			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding history record: %w", err)
			}

			records = append(records, rec)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
