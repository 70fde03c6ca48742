package dlcdb

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/dlcgo/dlcd/dlcwire/pre163"
	"go.etcd.io/bbolt"
)

// put stores msg under kind and id.
func (d *DB) put(tx *bbolt.Tx, kind Kind, id dlcwire.ContractID,
	schema Schema, msg dlcwire.Message) error {

	value, err := d.newEnvelope(schema, msg)
	if err != nil {
		return err
	}

	b, err := bucket(tx)
	if err != nil {
		return err
	}

	return b.Put(recordKey(kind, id[:]), value)
}

// fetch returns the record stored under kind and id.
func fetch(tx *bbolt.Tx, kind Kind, id dlcwire.ContractID) (*Record,
	error) {

	b, err := bucket(tx)
	if err != nil {
		return nil, err
	}

	key := recordKey(kind, id[:])
	value := b.Get(key)
	if value == nil {
		return nil, fmt.Errorf("%v %v: %w", kind, id, ErrRecordNotFound)
	}

	return newRecord(key, value)
}

// Fetch returns the record of the given kind stored under id.
func (d *DB) Fetch(kind Kind, id dlcwire.ContractID) (*Record, error) {
	var rec *Record
	err := d.View(func(tx *bbolt.Tx) error {
		var err error
		rec, err = fetch(tx, kind, id)

		return err
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// Delete removes the record of the given kind stored under id. Deleting a
// missing record is not an error.
func (d *DB) Delete(kind Kind, id dlcwire.ContractID) error {
	return d.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}

		return b.Delete(recordKey(kind, id[:]))
	})
}

// ForEach calls cb for every record of the given kind in key order. An
// error returned by cb stops the iteration and is passed through.
func (d *DB) ForEach(kind Kind, cb func(*Record) error) error {
	return d.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}

		prefix := []byte{byte(kind)}
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			rec, err := newRecord(k, v)
			if err != nil {
				return err
			}
			if err := cb(rec); err != nil {
				return err
			}
		}

		return nil
	})
}

// SaveOffer stores an offer under its temporary contract id, replacing any
// offer stored there before.
func (d *DB) SaveOffer(offer *dlcwire.DlcOffer) error {
	return d.Update(func(tx *bbolt.Tx) error {
		return d.put(
			tx, KindOffer, offer.TemporaryContractID,
			SchemaCurrent, offer,
		)
	})
}

// FindOffer returns the offer stored under tempID.
func (d *DB) FindOffer(tempID dlcwire.ContractID) (*dlcwire.DlcOffer,
	error) {

	rec, err := d.Fetch(KindOffer, tempID)
	if err != nil {
		return nil, err
	}

	return rec.Msg.(*dlcwire.DlcOffer), nil
}

// DeleteOffer removes the offer stored under tempID.
func (d *DB) DeleteOffer(tempID dlcwire.ContractID) error {
	return d.Delete(KindOffer, tempID)
}

// ListOffers returns every stored offer in temporary contract id order.
func (d *DB) ListOffers() ([]*dlcwire.DlcOffer, error) {
	var offers []*dlcwire.DlcOffer
	err := d.ForEach(KindOffer, func(rec *Record) error {
		offers = append(offers, rec.Msg.(*dlcwire.DlcOffer))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return offers, nil
}

// outpointKey builds the index key of a funding outpoint.
func outpointKey(op wire.OutPoint) []byte {
	var id [36]byte
	copy(id[:32], op.Hash[:])
	binary.BigEndian.PutUint32(id[32:], op.Index)

	return recordKey(KindOutpoint, id[:])
}

// SaveAccept stores an accept under its final contract id. The temporary
// contract id is linked to contractID and every funding input the accept
// spends is indexed so that FindAcceptByOutpoint can find it.
func (d *DB) SaveAccept(accept *dlcwire.DlcAccept,
	contractID dlcwire.ContractID) error {

	outpoints := make([]wire.OutPoint, len(accept.FundingInputs))
	for i := range accept.FundingInputs {
		op, err := accept.FundingInputs[i].OutPoint()
		if err != nil {
			return fmt.Errorf("funding input %d: %w", i, err)
		}
		outpoints[i] = op
	}

	return d.Update(func(tx *bbolt.Tx) error {
		err := d.put(tx, KindAccept, contractID, SchemaCurrent, accept)
		if err != nil {
			return err
		}

		return indexAccept(
			tx, accept.TemporaryContractID, contractID, outpoints,
		)
	})
}

func indexAccept(tx *bbolt.Tx, tempID, contractID dlcwire.ContractID,
	outpoints []wire.OutPoint) error {

	b, err := bucket(tx)
	if err != nil {
		return err
	}

	for _, op := range outpoints {
		if err := b.Put(outpointKey(op), contractID[:]); err != nil {
			return err
		}
	}

	return b.Put(recordKey(KindTempContractID, tempID[:]), contractID[:])
}

// FindAccept returns the accept stored under contractID.
func (d *DB) FindAccept(contractID dlcwire.ContractID) (*dlcwire.DlcAccept,
	error) {

	rec, err := d.Fetch(KindAccept, contractID)
	if err != nil {
		return nil, err
	}

	return rec.Msg.(*dlcwire.DlcAccept), nil
}

// FindAcceptByOutpoint returns the accept that spends op.
func (d *DB) FindAcceptByOutpoint(op wire.OutPoint) (*dlcwire.DlcAccept,
	error) {

	var accept *dlcwire.DlcAccept
	err := d.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}

		value := b.Get(outpointKey(op))
		if value == nil {
			return fmt.Errorf("outpoint %v: %w", op,
				ErrRecordNotFound)
		}

		var contractID dlcwire.ContractID
		copy(contractID[:], value)

		rec, err := fetch(tx, KindAccept, contractID)
		if err != nil {
			return err
		}
		accept = rec.Msg.(*dlcwire.DlcAccept)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return accept, nil
}

// SaveSign stores a sign message under its contract id.
func (d *DB) SaveSign(sign *dlcwire.DlcSign) error {
	return d.Update(func(tx *bbolt.Tx) error {
		return d.put(tx, KindSign, sign.ContractID, SchemaCurrent, sign)
	})
}

// FindSign returns the sign message stored under contractID.
func (d *DB) FindSign(contractID dlcwire.ContractID) (*dlcwire.DlcSign,
	error) {

	rec, err := d.Fetch(KindSign, contractID)
	if err != nil {
		return nil, err
	}

	return rec.Msg.(*dlcwire.DlcSign), nil
}

// SaveCancel stores a cancel message under its contract id.
func (d *DB) SaveCancel(cancel *dlcwire.DlcCancel) error {
	return d.Update(func(tx *bbolt.Tx) error {
		return d.put(
			tx, KindCancel, cancel.ContractID, SchemaCurrent, cancel,
		)
	})
}

// FindCancel returns the cancel message stored under contractID.
func (d *DB) FindCancel(contractID dlcwire.ContractID) (*dlcwire.DlcCancel,
	error) {

	rec, err := d.Fetch(KindCancel, contractID)
	if err != nil {
		return nil, err
	}

	return rec.Msg.(*dlcwire.DlcCancel), nil
}

// LinkContractID records that tempID became contractID.
func (d *DB) LinkContractID(tempID, contractID dlcwire.ContractID) error {
	return d.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}

		key := recordKey(KindTempContractID, tempID[:])

		return b.Put(key, contractID[:])
	})
}

func contractIDForTemp(tx *bbolt.Tx, tempID dlcwire.ContractID) (
	dlcwire.ContractID, error) {

	var contractID dlcwire.ContractID

	b, err := bucket(tx)
	if err != nil {
		return contractID, err
	}

	value := b.Get(recordKey(KindTempContractID, tempID[:]))
	if value == nil {
		return contractID, fmt.Errorf("%v: %w", tempID,
			ErrContractIDNotLinked)
	}
	copy(contractID[:], value)

	return contractID, nil
}

// ContractIDForTemp returns the contract id linked to tempID.
func (d *DB) ContractIDForTemp(tempID dlcwire.ContractID) (
	dlcwire.ContractID, error) {

	var contractID dlcwire.ContractID
	err := d.View(func(tx *bbolt.Tx) error {
		var err error
		contractID, err = contractIDForTemp(tx, tempID)

		return err
	})

	return contractID, err
}

// SaveMessage stores any message under its natural key. Offers are keyed
// by temporary contract id; accepts by the contract id linked to their
// temporary contract id, which must already exist.
func (d *DB) SaveMessage(msg dlcwire.Message) error {
	switch m := msg.(type) {
	case *dlcwire.DlcOffer:
		return d.SaveOffer(m)

	case *dlcwire.DlcAccept:
		contractID, err := d.ContractIDForTemp(m.TemporaryContractID)
		if err != nil {
			return err
		}

		return d.SaveAccept(m, contractID)

	case *dlcwire.DlcSign:
		return d.SaveSign(m)

	case *dlcwire.DlcCancel:
		return d.SaveCancel(m)

	default:
		return fmt.Errorf("%w: %T", ErrUnknownKind, msg)
	}
}

// ImportPre163 stores a message in the older schema as is. Offers are keyed
// by the temporary contract id derived from their encoding; accepts by the
// contract id linked to their temporary contract id. MigratePre163 later
// rewrites such records in the current schema.
func (d *DB) ImportPre163(msg dlcwire.Message) error {
	kind, err := kindForMsgType(msg.MsgType())
	if err != nil {
		return err
	}

	return d.Update(func(tx *bbolt.Tx) error {
		var id dlcwire.ContractID
		switch m := msg.(type) {
		case *pre163.DlcOffer:
			id, err = pre163.TemporaryContractID(m)
			if err != nil {
				return err
			}

		case *pre163.DlcAccept:
			id, err = contractIDForTemp(tx, m.TemporaryContractID)
			if err != nil {
				return err
			}

		case *pre163.DlcSign:
			id = m.ContractID

		case *dlcwire.DlcCancel:
			id = m.ContractID

		default:
			return fmt.Errorf("%w: %T is not a pre-163 message",
				ErrUnknownKind, msg)
		}

		log.Debugf("Importing pre-163 %v under %v", kind, id)

		return d.put(tx, kind, id, SchemaPre163, msg)
	})
}
