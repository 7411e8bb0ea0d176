package sim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"
)

var (
	bucketRegisters = []byte("registers")
	bucketHistory   = []byte("history")
)

var ErrBucketNotFound = errors.New("bucket not found")

// Store keeps the state of a simulated device across runs: the registers
// that survive a reset and a log of the boots.
type Store struct {
	db *bbolt.DB
}

// Record is one boot in the history of a device.
type Record struct {
	Seq       uint64    `yaml:"seq"`
	Time      time.Time `yaml:"time"`
	Target    string    `yaml:"target,omitempty"`
	Outcome   string    `yaml:"outcome"`
	Cause     string    `yaml:"cause"`
	Violation string    `yaml:"violation,omitempty"`
	Resets    int       `yaml:"resets"`
	Error     string    `yaml:"error,omitempty"`
	Phases    []string  `yaml:"phases"`
}

// NewRecord builds the history record of a result.
func NewRecord(target string, res Result) Record {
	rec := Record{
		Time:    time.Now().UTC(),
		Target:  target,
		Outcome: res.Outcome.String(),
		Cause:   res.Cause.String(),
		Resets:  res.Resets,
	}
	if res.Violation != 0 {
		rec.Violation = res.Violation.String()
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	for _, p := range res.Phases {
		rec.Phases = append(rec.Phases, p.String())
	}
	return rec
}

// OpenStore opens the state database at path, creating it if needed.
func OpenStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRegisters, bucketHistory} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func addrKey(addr uintptr) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(addr))
	return b
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

// Save stores the retained registers of m.
func (s *Store) Save(m *Machine) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRegisters)
		if b == nil {
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucketRegisters)
		}
		for _, addr := range m.Retained() {
			v := make([]byte, 4)
			binary.BigEndian.PutUint32(v, m.Peek(addr))
			if err := b.Put(addrKey(addr), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Restore loads the retained registers saved earlier into m. It reports
// whether any state was found; a machine without saved state keeps its
// power-on values.
func (s *Store) Restore(m *Machine) (bool, error) {
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRegisters)
		if b == nil {
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucketRegisters)
		}
		for _, addr := range m.Retained() {
			v := b.Get(addrKey(addr))
			if v == nil {
				continue
			}
			m.Poke(addr, binary.BigEndian.Uint32(v))
			found = true
		}
		return nil
	})
	return found, err
}

// Append adds rec to the history and returns its sequence number.
func (s *Store) Append(rec Record) (uint64, error) {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketHistory)
		if b == nil {
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucketHistory)
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		rec.Seq = seq
		data, err := yaml.Marshal(&rec)
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), data)
	})
	return rec.Seq, err
}

// History returns the recorded boots, oldest first.
func (s *Store) History() ([]Record, error) {
	var records []Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketHistory)
		if b == nil {
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucketHistory)
		}
		return b.ForEach(func(k, v []byte) error {
			var rec Record
			if err := yaml.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("record %d: %w", binary.BigEndian.Uint64(k), err)
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}
