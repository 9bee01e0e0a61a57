package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// Bolt is a KV backed by a single bbolt bucket.
type Bolt struct {
	DB     *bbolt.DB
	bucket []byte
}

// OpenBolt opens (creating if needed) the database file at path.
// A writable bbolt conn holds a file lock; a second writer blocks
// until timeout.
func OpenBolt(path string, bucket []byte) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Bolt{DB: db, bucket: bucket}, nil
}

func (b *Bolt) Close() error {
	return b.DB.Close()
}

func (b *Bolt) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	got, err := b.readKV([]byte(key))
	if err != nil {
		return "", false, err
	}
	if got == nil {
		return "", false, nil
	}
	return string(got), true, nil
}

func (b *Bolt) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.storeKV([]byte(key), []byte(value))
}

func (b *Bolt) storeKV(key []byte, data []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("storeKV: empty key")
	}
	if data == nil {
		return fmt.Errorf("storeKV: nil data")
	}
	return b.DB.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(b.bucket)
		if err != nil {
			return err
		}
		return bucket.Put(key, data)
	})
}

// readKV returns nil, nil for a missing bucket or key.
func (b *Bolt) readKV(key []byte) ([]byte, error) {
	var out []byte
	err := b.DB.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		if bucket == nil {
			return nil
		}
		// Gotcha! The value returned by Get is only valid in the scope of the transaction.
		got := bucket.Get(key)
		if got == nil {
			return nil
		}
		out = append([]byte{}, got...)
		return nil
	})
	return out, err
}
