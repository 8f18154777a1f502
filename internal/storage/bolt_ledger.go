package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	seenBucket   = "seen_ids"
	seqKeyLength = 8
)

// boltLedger stores ids under monotonically increasing sequence keys so a cursor walk
// returns them in append order.
type boltLedger struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Ledger.
func openBolt(path string) (Ledger, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(seenBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltLedger{db: db}, nil
}

// Close closes the BoltDB file.
func (b *boltLedger) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Load walks the bucket in key order.
func (b *boltLedger) Load() ([]string, error) {
	var ids []string
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(seenBucket))
		if bucket == nil {
			return fmt.Errorf("seen bucket missing")
		}
		return bucket.ForEach(func(_, v []byte) error {
			ids = append(ids, string(v))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Append stores id under the bucket's next sequence number. bbolt fsyncs on commit.
func (b *boltLedger) Append(id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(seenBucket))
		if bucket == nil {
			return fmt.Errorf("seen bucket missing")
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, seqKeyLength)
		binary.BigEndian.PutUint64(key, seq)
		return bucket.Put(key, []byte(id))
	})
}
