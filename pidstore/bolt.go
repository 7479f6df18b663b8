package pidstore

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// bucket names for the PID table and the record documents they resolve to
var pidBucket = []byte("pids")
var recordBucket = []byte("records")

// This type implements Store on top of a bbolt database file. PIDs are
// indexed by "<type>:<value>"; record documents are indexed by the UUID of
// the object a PID is assigned to.
type BoltStore struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a PID store at the given path.
func Open(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, &StoreError{Message: err.Error()}
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{pidBucket, recordBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, &StoreError{Message: err.Error()}
	}
	return &BoltStore{db: db}, nil
}

// Close closes the store.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func pidKey(pidType, value string) []byte {
	return []byte(pidType + ":" + value)
}

// Get looks up a PID by scheme and value.
func (s *BoltStore) Get(pidType, value string) (PID, error) {
	var pid PID
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(pidBucket).Get(pidKey(pidType, value))
		if data == nil {
			return &NotFoundError{Type: pidType, Value: value}
		}
		return json.Unmarshal(data, &pid)
	})
	return pid, err
}

// Resolve looks up a PID and the record document assigned to it.
func (s *BoltStore) Resolve(pidType, value string) (PID, map[string]any, error) {
	var pid PID
	var doc map[string]any
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(pidBucket).Get(pidKey(pidType, value))
		if data == nil {
			return &NotFoundError{Type: pidType, Value: value}
		}
		if err := json.Unmarshal(data, &pid); err != nil {
			return err
		}
		if !pid.HasObject() {
			return &NotFoundError{Type: pidType, Value: value}
		}
		recData := tx.Bucket(recordBucket).Get([]byte(pid.Object.String()))
		if recData == nil {
			return &NotFoundError{Type: pidType, Value: value}
		}
		return json.Unmarshal(recData, &doc)
	})
	if err != nil {
		return PID{}, nil, err
	}
	return pid, doc, nil
}

// Mint creates a new PID assigned to the given object.
func (s *BoltStore) Mint(pidType, value string, object uuid.UUID) (PID, error) {
	var pid PID
	err := s.InTransaction(func(tx *StoreTx) error {
		var err error
		pid, err = tx.Mint(pidType, value, object)
		return err
	})
	return pid, err
}

// SaveRecord stores a record document under the given object UUID, fully
// replacing any previous version.
func (s *BoltStore) SaveRecord(object uuid.UUID, doc map[string]any) error {
	return s.InTransaction(func(tx *StoreTx) error {
		return tx.SaveRecord(object, doc)
	})
}

// StoreTx bundles the write operations available inside a transaction.
type StoreTx struct {
	tx *bolt.Tx
}

// Mint creates a new PID inside the transaction.
func (t *StoreTx) Mint(pidType, value string, object uuid.UUID) (PID, error) {
	bucket := t.tx.Bucket(pidBucket)
	key := pidKey(pidType, value)
	if bucket.Get(key) != nil {
		return PID{}, &AlreadyMintedError{Type: pidType, Value: value}
	}
	pid := PID{Type: pidType, Value: value, Object: object}
	data, err := json.Marshal(&pid)
	if err != nil {
		return PID{}, err
	}
	return pid, bucket.Put(key, data)
}

// Get looks up a PID inside the transaction.
func (t *StoreTx) Get(pidType, value string) (PID, error) {
	var pid PID
	data := t.tx.Bucket(pidBucket).Get(pidKey(pidType, value))
	if data == nil {
		return pid, &NotFoundError{Type: pidType, Value: value}
	}
	err := json.Unmarshal(data, &pid)
	return pid, err
}

// SaveRecord stores a record document inside the transaction.
func (t *StoreTx) SaveRecord(object uuid.UUID, doc map[string]any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return t.tx.Bucket(recordBucket).Put([]byte(object.String()), data)
}

// InTransaction runs fn inside a single write transaction. If fn returns an
// error, every change it made is rolled back.
func (s *BoltStore) InTransaction(fn func(tx *StoreTx) error) error {
	tx, err := s.db.Begin(true)
	if err != nil {
		return &StoreError{Message: err.Error()}
	}
	defer tx.Rollback()

	if err := fn(&StoreTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// FindExpiredEmbargoes returns the object UUIDs of all stored records whose
// access right is embargoed and whose embargo date lies before the given
// time. This comparison is at timestamp granularity on purpose: a record
// embargoed until today is reported as expired only once the day has begun.
func (s *BoltStore) FindExpiredEmbargoes(now time.Time) ([]string, error) {
	expired := make([]string, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(recordBucket).ForEach(func(k, v []byte) error {
			var doc map[string]any
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			if doc["access_right"] != "embargoed" {
				return nil
			}
			embargoDate, ok := doc["embargo_date"].(string)
			if !ok {
				return nil
			}
			date, err := time.ParseInLocation("2006-01-02", embargoDate, time.UTC)
			if err != nil {
				return nil
			}
			if date.Before(now.UTC()) {
				expired = append(expired, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}
