// Package dlcdb persists negotiation messages in a bbolt database. Every
// message is stored in its wire encoding, wrapped in a small msgpack
// envelope that records the schema it was written in.
package dlcdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dlcgo/dlcd/dlcwire"
	"go.etcd.io/bbolt"
)

const (
	dbName           = "dlc.db"
	dbFilePermission = 0600
)

var (
	// dlcBucket is the single top-level bucket. Every key in it starts
	// with a Kind byte.
	dlcBucket = []byte("dlc")

	// ErrRecordNotFound is returned when no record is stored under the
	// requested key.
	ErrRecordNotFound = errors.New("record not found")

	// ErrContractIDNotLinked is returned when a temporary contract id has
	// not been linked to a final contract id.
	ErrContractIDNotLinked = errors.New("temporary contract id not linked")

	// ErrUnknownKind is returned for a key prefix that names no record
	// kind.
	ErrUnknownKind = errors.New("unknown record kind")
)

// Kind is the key prefix that tells what a record holds.
type Kind byte

const (
	// KindOffer records are offers keyed by temporary contract id.
	KindOffer Kind = 50

	// KindAccept records are accepts keyed by contract id.
	KindAccept Kind = 51

	// KindSign records are sign messages keyed by contract id.
	KindSign Kind = 52

	// KindOutpoint records map a funding input outpoint to the contract
	// id of the accept that spends it.
	KindOutpoint Kind = 54

	// KindCancel records are cancel messages keyed by contract id.
	KindCancel Kind = 56

	// KindTempContractID records map a temporary contract id to its final
	// contract id.
	KindTempContractID Kind = 58
)

// String returns a human readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindOffer:
		return "offer"
	case KindAccept:
		return "accept"
	case KindSign:
		return "sign"
	case KindOutpoint:
		return "outpoint"
	case KindCancel:
		return "cancel"
	case KindTempContractID:
		return "tempcontractid"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

// ParseKind is the inverse of String for the kinds that hold messages.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindOffer, KindAccept, KindSign, KindCancel} {
		if k.String() == s {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// kindForMsgType maps a message type to the kind it is stored under.
func kindForMsgType(msgType dlcwire.MessageType) (Kind, error) {
	switch msgType {
	case dlcwire.MsgDlcOffer:
		return KindOffer, nil
	case dlcwire.MsgDlcAccept:
		return KindAccept, nil
	case dlcwire.MsgDlcSign:
		return KindSign, nil
	case dlcwire.MsgDlcCancel:
		return KindCancel, nil
	default:
		return 0, fmt.Errorf("%w: message type %v", ErrUnknownKind,
			msgType)
	}
}

// recordKey builds the key of a record from its kind and id.
func recordKey(kind Kind, id []byte) []byte {
	key := make([]byte, 0, 1+len(id))
	key = append(key, byte(kind))

	return append(key, id...)
}

// DB is the primary datastore for negotiation messages.
type DB struct {
	*bbolt.DB

	dbPath string
	opts   Options
}

// Open opens or creates the database found at the passed path.
func Open(dbPath string, modifiers ...OptionModifier) (*DB, error) {
	opts := DefaultOptions()
	for _, modifier := range modifiers {
		modifier(&opts)
	}

	if !opts.ReadOnly {
		if err := os.MkdirAll(dbPath, 0700); err != nil {
			return nil, err
		}
	}

	path := filepath.Join(dbPath, dbName)
	bdb, err := bbolt.Open(path, dbFilePermission, &bbolt.Options{
		Timeout:        opts.OpenTimeout,
		NoFreelistSync: opts.NoFreelistSync,
		ReadOnly:       opts.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open %v: %w", path, err)
	}

	db := &DB{
		DB:     bdb,
		dbPath: dbPath,
		opts:   opts,
	}

	if !opts.ReadOnly {
		err := bdb.Update(func(tx *bbolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(dlcBucket)
			return err
		})
		if err != nil {
			bdb.Close()
			return nil, err
		}
	}

	log.Debugf("Opened dlc database at %v", path)

	return db, nil
}

// Path returns the directory the database lives in.
func (d *DB) Path() string {
	return d.dbPath
}

// Wipe deletes every stored record in a single transaction.
func (d *DB) Wipe() error {
	return d.Update(func(tx *bbolt.Tx) error {
		err := tx.DeleteBucket(dlcBucket)
		if err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}

		_, err = tx.CreateBucket(dlcBucket)

		return err
	})
}

// bucket returns the top-level bucket, which is missing only in a
// read-only database that was never written.
func bucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	b := tx.Bucket(dlcBucket)
	if b == nil {
		return nil, ErrRecordNotFound
	}

	return b, nil
}
