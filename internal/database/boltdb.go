package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// BucketName is the single "table" holding all sync records.
	BucketName = "SyncRecords"
)

var errNotFound = errors.New("not found")

// DB wraps the BoltDB instance backing the sync cache.
type DB struct {
	conn *bbolt.DB
}

// NewBoltDB opens (or creates) the database file and ensures the bucket
// exists. The open timeout keeps a second process from deadlocking on the
// same file.
func NewBoltDB(dbPath string) (*DB, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketName))
		return err
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Get returns the record for relPath, or (nil, nil) when none exists.
// A non-nil error always means a storage fault, never a miss.
func (d *DB) Get(relPath string) (*SyncRecord, error) {
	var rec SyncRecord
	err := d.conn.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		v := b.Get([]byte(relPath))
		if v == nil {
			return errNotFound
		}
		return json.Unmarshal(v, &rec)
	})

	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Put stores or replaces the record, keyed by its RelPath.
func (d *DB) Put(rec *SyncRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	return d.conn.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		return b.Put([]byte(rec.RelPath), data)
	})
}

// Clear wipes every record by dropping and recreating the bucket.
// Backs a force sync.
func (d *DB) Clear() error {
	return d.conn.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(BucketName)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(BucketName))
		return err
	})
}

// Count reports how many records are stored.
func (d *DB) Count() (int, error) {
	var n int
	err := d.conn.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(BucketName)).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
