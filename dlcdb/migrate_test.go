package dlcdb

import (
	"errors"
	"testing"

	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/dlcgo/dlcd/dlcwire/pre163"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// importLegacy stores the older form of every message of a legacy
// negotiation and returns the current forms alongside the contract id.
func importLegacy(t *rapid.T, db *DB) (*dlcwire.DlcOffer,
	*dlcwire.DlcAccept, *dlcwire.DlcSign, dlcwire.ContractID) {

	opts := dlcwire.GenOptions{Legacy: true}
	offer := dlcwire.RandOffer(t, opts)
	accept := dlcwire.RandAccept(t, opts)
	sign := dlcwire.RandSign(t, opts)
	accept.TemporaryContractID = offer.TemporaryContractID

	oldOffer, err := pre163.OfferToPre163(offer)
	require.NoError(t, err)
	require.NoError(t, db.ImportPre163(oldOffer))

	require.NoError(t, db.LinkContractID(
		offer.TemporaryContractID, sign.ContractID,
	))

	oldAccept, err := pre163.AcceptToPre163(accept)
	require.NoError(t, err)
	require.NoError(t, db.ImportPre163(oldAccept))

	require.NoError(t, db.ImportPre163(pre163.SignToPre163(sign)))

	return offer, accept, sign, sign.ContractID
}

// TestImportPre163 asserts that records in the older schema are upgraded
// when read.
func TestImportPre163(t *testing.T) {
	t.Parallel()

	db := makeTestDB(t)

	rapid.Check(t, func(t *rapid.T) {
		offer, accept, sign, contractID := importLegacy(t, db)

		oldOffer, err := pre163.OfferToPre163(offer)
		require.NoError(t, err)
		derived, err := pre163.TemporaryContractID(oldOffer)
		require.NoError(t, err)

		rec, err := db.Fetch(KindOffer, derived)
		require.NoError(t, err)
		require.Equal(t, SchemaPre163, rec.Schema)

		upgraded, err := pre163.OfferFromPre163(oldOffer, derived)
		require.NoError(t, err)
		requireSameMessage(t, upgraded, rec.Msg)

		gotAccept, err := db.FindAccept(contractID)
		require.NoError(t, err)
		requireSameMessage(t, accept, gotAccept)

		gotSign, err := db.FindSign(contractID)
		require.NoError(t, err)
		requireSameMessage(t, sign, gotSign)
	})
}

// TestImportPre163Rejects asserts that only older messages are imported and
// that an accept needs a linked contract id.
func TestImportPre163Rejects(t *testing.T) {
	t.Parallel()

	db := makeTestDB(t)

	rapid.Check(t, func(t *rapid.T) {
		opts := dlcwire.GenOptions{Legacy: true}

		err := db.ImportPre163(dlcwire.RandOffer(t, opts))
		require.ErrorIs(t, err, ErrUnknownKind)

		accept := dlcwire.RandAccept(t, opts)
		require.NoError(t, db.Delete(
			KindTempContractID, accept.TemporaryContractID,
		))

		oldAccept, err := pre163.AcceptToPre163(accept)
		require.NoError(t, err)

		err = db.ImportPre163(oldAccept)
		require.ErrorIs(t, err, ErrContractIDNotLinked)
	})
}

// TestMigratePre163 asserts that a migration rewrites every older record in
// the current schema and re-keys offers.
func TestMigratePre163(t *testing.T) {
	t.Parallel()

	db := makeTestDB(t)

	rapid.Check(t, func(t *rapid.T) {
		offer, accept, sign, contractID := importLegacy(t, db)

		cancel := &dlcwire.DlcCancel{
			ContractID: contractID,
			CancelType: dlcwire.CancelError,
		}
		require.NoError(t, db.ImportPre163(cancel))

		tempIDs := func(*pre163.DlcOffer) (dlcwire.ContractID, error) {
			return offer.TemporaryContractID, nil
		}
		n, err := db.MigratePre163(tempIDs)
		require.NoError(t, err)
		require.Equal(t, 4, n)

		rec, err := db.Fetch(KindOffer, offer.TemporaryContractID)
		require.NoError(t, err)
		require.Equal(t, SchemaCurrent, rec.Schema)
		requireSameMessage(t, offer, rec.Msg)

		for _, kind := range []Kind{KindAccept, KindSign, KindCancel} {
			rec, err := db.Fetch(kind, contractID)
			require.NoError(t, err)
			require.Equal(t, SchemaCurrent, rec.Schema)
		}

		gotAccept, err := db.FindAccept(contractID)
		require.NoError(t, err)
		requireSameMessage(t, accept, gotAccept)

		gotSign, err := db.FindSign(contractID)
		require.NoError(t, err)
		requireSameMessage(t, sign, gotSign)

		// Nothing is left to migrate.
		n, err = db.MigratePre163(tempIDs)
		require.NoError(t, err)
		require.Zero(t, n)
	})
}

// TestMigratePre163DerivedID asserts that offers keep the derived temporary
// contract id when no function is given.
func TestMigratePre163DerivedID(t *testing.T) {
	t.Parallel()

	db := makeTestDB(t)

	rapid.Check(t, func(t *rapid.T) {
		offer := dlcwire.RandOffer(t, dlcwire.GenOptions{Legacy: true})
		oldOffer, err := pre163.OfferToPre163(offer)
		require.NoError(t, err)
		require.NoError(t, db.ImportPre163(oldOffer))

		_, err = db.MigratePre163(nil)
		require.NoError(t, err)

		derived, err := pre163.TemporaryContractID(oldOffer)
		require.NoError(t, err)

		got, err := db.FindOffer(derived)
		require.NoError(t, err)
		require.Equal(t, derived, got.TemporaryContractID)
		require.Equal(t, dlcwire.ProtocolVersion, got.ProtocolVersion)
	})
}

// TestMigratePre163Atomic asserts that a failed migration leaves the store
// untouched.
func TestMigratePre163Atomic(t *testing.T) {
	t.Parallel()

	db := makeTestDB(t)

	rapid.Check(t, func(t *rapid.T) {
		sign := dlcwire.RandSign(t, dlcwire.GenOptions{Legacy: true})
		require.NoError(t, db.ImportPre163(pre163.SignToPre163(sign)))

		offer := dlcwire.RandOffer(t, dlcwire.GenOptions{Legacy: true})
		oldOffer, err := pre163.OfferToPre163(offer)
		require.NoError(t, err)
		require.NoError(t, db.ImportPre163(oldOffer))

		errNoID := errors.New("no id")
		_, err = db.MigratePre163(
			func(*pre163.DlcOffer) (dlcwire.ContractID, error) {
				return dlcwire.ContractID{}, errNoID
			},
		)
		require.ErrorIs(t, err, errNoID)

		rec, err := db.Fetch(KindSign, sign.ContractID)
		require.NoError(t, err)
		require.Equal(t, SchemaPre163, rec.Schema)
	})
}
