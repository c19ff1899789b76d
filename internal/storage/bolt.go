// Package storage persists the ledger and dimension index in a bbolt
// database. The database is a write-behind journal of accepted mutations;
// the in-memory store stays the system of record and is rebuilt from the
// buckets at startup.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/cleared-dev/fincore/internal/dimension"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/model"
)

// Bucket names.
const (
	bucketAccounts     = "accounts"
	bucketTransactions = "transactions"
	bucketClassTags    = "class_tags"
	bucketCategoryTags = "category_tags"
	bucketMeta         = "meta"
)

// Meta keys.
const (
	keyStoreVersion = "store_version"
	keyIndexVersion = "index_version"
)

// DB wraps the bbolt database. It implements both ledger.Persister and
// dimension.Persister, so one handle backs the store and the index.
type DB struct {
	db *bolt.DB
}

var (
	_ ledger.Persister    = (*DB)(nil)
	_ dimension.Persister = (*DB)(nil)
)

// Open opens or creates the database file and initializes the buckets.
func Open(path string) (*DB, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := []string{bucketAccounts, bucketTransactions, bucketClassTags, bucketCategoryTags, bucketMeta}
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("creating bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// HasAccounts reports whether any accounts were ever persisted; used at
// startup to decide between reload and chart bootstrap.
func (d *DB) HasAccounts() (bool, error) {
	var found bool
	err := d.db.View(func(tx *bolt.Tx) error {
		k, _ := tx.Bucket([]byte(bucketAccounts)).Cursor().First()
		found = k != nil
		return nil
	})
	return found, err
}

// SaveAccount implements ledger.Persister.
func (d *DB) SaveAccount(a model.Account) error {
	return d.putJSON(bucketAccounts, itob(uint64(a.ID)), a)
}

// txRecord pairs a transaction with the store version it was accepted at.
type txRecord struct {
	Version uint64            `json:"version"`
	Tx      model.Transaction `json:"tx"`
}

// SaveTransaction implements ledger.Persister. Records are keyed by append
// version, so a cursor walk replays them in order.
func (d *DB) SaveTransaction(tx model.Transaction, version uint64) error {
	return d.putJSON(bucketTransactions, itob(version), txRecord{Version: version, Tx: tx})
}

// SaveVersion implements ledger.Persister.
func (d *DB) SaveVersion(version uint64) error {
	return d.putJSON(bucketMeta, []byte(keyStoreVersion), version)
}

// SaveClassTag implements dimension.Persister.
func (d *DB) SaveClassTag(tag model.ClassTag) error {
	return d.putJSON(bucketClassTags, []byte(tag.ID), tag)
}

// SaveCategoryTag implements dimension.Persister.
func (d *DB) SaveCategoryTag(tag model.CategoryTag) error {
	return d.putJSON(bucketCategoryTags, []byte(tag.ID), tag)
}

// SaveIndexVersion implements dimension.Persister.
func (d *DB) SaveIndexVersion(version uint64) error {
	return d.putJSON(bucketMeta, []byte(keyIndexVersion), version)
}

// Load rebuilds the store and index from the persisted buckets. Accounts
// replay in numeric ID order and transactions in append-version order. Tags
// replay parents before children.
func (d *DB) Load(store *ledger.Store, index *dimension.Index) error {
	return d.db.View(func(btx *bolt.Tx) error {
		err := btx.Bucket([]byte(bucketAccounts)).ForEach(func(_, v []byte) error {
			var a model.Account
			if err := json.Unmarshal(v, &a); err != nil {
				return fmt.Errorf("decoding account: %w", err)
			}
			return store.RestoreAccount(a)
		})
		if err != nil {
			return err
		}

		err = btx.Bucket([]byte(bucketTransactions)).ForEach(func(_, v []byte) error {
			var rec txRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding transaction: %w", err)
			}
			return store.RestoreTransaction(rec.Tx, rec.Version)
		})
		if err != nil {
			return err
		}

		if err := loadClassTags(btx, index); err != nil {
			return err
		}
		if err := loadCategoryTags(btx, index); err != nil {
			return err
		}

		if raw := btx.Bucket([]byte(bucketMeta)).Get([]byte(keyStoreVersion)); raw != nil {
			var v uint64
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("decoding store version: %w", err)
			}
			store.SetVersion(v)
		}
		if raw := btx.Bucket([]byte(bucketMeta)).Get([]byte(keyIndexVersion)); raw != nil {
			var v uint64
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("decoding index version: %w", err)
			}
			index.SetVersion(v)
		}
		return nil
	})
}

// loadClassTags restores class tags, deferring children until their parent
// has been restored. Tag IDs are random, so bucket order is arbitrary.
func loadClassTags(btx *bolt.Tx, index *dimension.Index) error {
	var pending []model.ClassTag
	err := btx.Bucket([]byte(bucketClassTags)).ForEach(func(_, v []byte) error {
		var tag model.ClassTag
		if err := json.Unmarshal(v, &tag); err != nil {
			return fmt.Errorf("decoding class tag: %w", err)
		}
		pending = append(pending, tag)
		return nil
	})
	if err != nil {
		return err
	}
	for len(pending) > 0 {
		progressed := false
		rest := pending[:0]
		for _, tag := range pending {
			if err := index.RestoreClassTag(tag); err != nil {
				rest = append(rest, tag)
				continue
			}
			progressed = true
		}
		if !progressed {
			return fmt.Errorf("restoring class tags: %d tags with unresolvable parents", len(rest))
		}
		pending = rest
	}
	return nil
}

func loadCategoryTags(btx *bolt.Tx, index *dimension.Index) error {
	var pending []model.CategoryTag
	err := btx.Bucket([]byte(bucketCategoryTags)).ForEach(func(_, v []byte) error {
		var tag model.CategoryTag
		if err := json.Unmarshal(v, &tag); err != nil {
			return fmt.Errorf("decoding category tag: %w", err)
		}
		pending = append(pending, tag)
		return nil
	})
	if err != nil {
		return err
	}
	for len(pending) > 0 {
		progressed := false
		rest := pending[:0]
		for _, tag := range pending {
			if err := index.RestoreCategoryTag(tag); err != nil {
				rest = append(rest, tag)
				continue
			}
			progressed = true
		}
		if !progressed {
			return fmt.Errorf("restoring category tags: %d tags with unresolvable parents", len(rest))
		}
		pending = rest
	}
	return nil
}

func (d *DB) putJSON(bucket string, key []byte, value any) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshaling %s record: %w", bucket, err)
		}
		return tx.Bucket([]byte(bucket)).Put(key, data)
	})
}

// itob encodes an integer as a big-endian key so bucket cursors iterate in
// numeric order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
