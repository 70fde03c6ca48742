package dlcdb

import (
	"bytes"
	"fmt"

	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/dlcgo/dlcd/dlcwire/pre163"
	"go.etcd.io/bbolt"
)

// TempIDFunc picks the temporary contract id a pre-163 offer is given when
// it is rewritten in the current schema.
type TempIDFunc func(*pre163.DlcOffer) (dlcwire.ContractID, error)

// migration is a pending rewrite of a single record.
type migration struct {
	oldKey []byte
	newKey []byte
	msg    dlcwire.Message
}

// MigratePre163 rewrites every record stored in the pre-163 schema in the
// current one. Offers are re-keyed under the temporary contract id returned
// by tempIDFunc; a nil tempIDFunc keeps the id derived from the offer's
// encoding. All records are migrated in a single transaction, so a failure
// leaves the store untouched. The number of migrated records is returned.
func (d *DB) MigratePre163(tempIDFunc TempIDFunc) (int, error) {
	if tempIDFunc == nil {
		tempIDFunc = pre163.TemporaryContractID
	}

	var migrated int
	err := d.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}

		// Collect the rewrites first, since a bucket must not be
		// modified while a cursor walks it.
		var pending []migration
		err = b.ForEach(func(k, v []byte) error {
			kind := Kind(k[0])
			if kind == KindOutpoint || kind == KindTempContractID {
				return nil
			}

			env, err := decodeEnvelope(v)
			if err != nil {
				return err
			}
			if env.Schema != SchemaPre163 {
				return nil
			}

			m, err := migrateRecord(k, env, tempIDFunc)
			if err != nil {
				return fmt.Errorf("%v record %x: %w", kind, k[1:],
					err)
			}
			pending = append(pending, *m)

			return nil
		})
		if err != nil {
			return err
		}

		for _, m := range pending {
			if !bytes.Equal(m.oldKey, m.newKey) {
				if err := b.Delete(m.oldKey); err != nil {
					return err
				}
			}

			value, err := d.newEnvelope(SchemaCurrent, m.msg)
			if err != nil {
				return err
			}
			if err := b.Put(m.newKey, value); err != nil {
				return err
			}

			log.Debugf("Migrated %v record %x to %x",
				Kind(m.oldKey[0]), m.oldKey[1:], m.newKey[1:])
		}

		migrated = len(pending)

		return nil
	})
	if err != nil {
		return 0, err
	}

	if migrated > 0 {
		log.Infof("Migrated %d pre-163 records", migrated)
	}

	return migrated, nil
}

func migrateRecord(key []byte, env *envelope, tempIDFunc TempIDFunc) (
	*migration, error) {

	old, err := pre163.DecodeMessage(env.Wire)
	if err != nil {
		return nil, err
	}

	m := &migration{
		oldKey: key,
		newKey: key,
	}

	offer, ok := old.(*pre163.DlcOffer)
	if !ok {
		m.msg, err = pre163.FromPre163(old)
		if err != nil {
			return nil, err
		}

		return m, nil
	}

	tempID, err := tempIDFunc(offer)
	if err != nil {
		return nil, err
	}

	m.msg, err = pre163.OfferFromPre163(offer, tempID)
	if err != nil {
		return nil, err
	}
	m.newKey = recordKey(KindOffer, tempID[:])

	return m, nil
}
