package dlcwire

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/dlcgo/dlcd/amount"
	"github.com/dlcgo/dlcd/codec"
)

// FundingInput is an output of a previous transaction that a party
// contributes to the funding transaction.
type FundingInput struct {
	// InputSerialID orders the inputs of the funding transaction.
	InputSerialID uint64 `json:"inputSerialId"`

	// PrevTx is the serialized transaction that creates the output. It
	// is kept verbatim so that the message re-encodes byte for byte;
	// ParsePrevTx decodes it.
	PrevTx HexBytes `json:"prevTx"`

	// PrevTxVout is the index of the spent output in PrevTx.
	PrevTxVout uint32 `json:"prevTxVout"`

	// Sequence is the nSequence of the funding transaction input.
	Sequence uint32 `json:"sequence"`

	// MaxWitnessLen is the worst case size of the witness that will spend
	// the output, used for fee estimation.
	MaxWitnessLen uint16 `json:"maxWitnessLen"`

	// RedeemScript is set when the output is a P2SH wrapped witness
	// program.
	RedeemScript HexBytes `json:"redeemScript"`
}

// Decode reads a funding input in the current untagged layout.
func (f *FundingInput) Decode(r *codec.Reader) error {
	var err error
	if f.InputSerialID, err = r.ReadUint64(); err != nil {
		return err
	}
	if f.PrevTx, err = r.ReadVarBytes(); err != nil {
		return err
	}

	return f.decodeTail(r)
}

// decodeTail reads the fields that follow the previous transaction, which
// are laid out identically in both schemas.
func (f *FundingInput) decodeTail(r *codec.Reader) error {
	var err error
	if f.PrevTxVout, err = r.ReadUint32(); err != nil {
		return err
	}
	if f.Sequence, err = r.ReadUint32(); err != nil {
		return err
	}
	if f.MaxWitnessLen, err = r.ReadUint16(); err != nil {
		return err
	}
	f.RedeemScript, err = r.ReadU16Bytes()

	return err
}

// DecodeU16 reads a funding input body whose previous transaction carries a
// u16 length prefix, as the older schema writes it.
func (f *FundingInput) DecodeU16(r *codec.Reader) error {
	var err error
	if f.InputSerialID, err = r.ReadUint64(); err != nil {
		return err
	}
	if f.PrevTx, err = r.ReadU16Bytes(); err != nil {
		return err
	}

	return f.decodeTail(r)
}

// Encode writes the funding input in the current untagged layout.
func (f *FundingInput) Encode(w *bytes.Buffer) error {
	if err := codec.WriteUint64(w, f.InputSerialID); err != nil {
		return err
	}
	if err := codec.WriteVarBytes(w, f.PrevTx); err != nil {
		return err
	}

	return f.encodeTail(w)
}

// EncodeU16 writes the funding input body with a u16 prefixed previous
// transaction.
func (f *FundingInput) EncodeU16(w *bytes.Buffer) error {
	if err := codec.WriteUint64(w, f.InputSerialID); err != nil {
		return err
	}
	if err := codec.WriteU16Bytes(w, f.PrevTx); err != nil {
		return err
	}

	return f.encodeTail(w)
}

func (f *FundingInput) encodeTail(w *bytes.Buffer) error {
	if err := codec.WriteUint32(w, f.PrevTxVout); err != nil {
		return err
	}
	if err := codec.WriteUint32(w, f.Sequence); err != nil {
		return err
	}
	if err := codec.WriteUint16(w, f.MaxWitnessLen); err != nil {
		return err
	}

	return codec.WriteU16Bytes(w, f.RedeemScript)
}

// ParsePrevTx decodes the previous transaction. The witness encoding is tried
// first; a transaction with no inputs is indistinguishable from a witness
// marker, so the legacy encoding is the fallback. Either way the parse must
// consume every byte.
func (f *FundingInput) ParsePrevTx() (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(wire.TxVersion)
	r := bytes.NewReader(f.PrevTx)
	if err := tx.Deserialize(r); err == nil && r.Len() == 0 {
		return tx, nil
	}

	tx = wire.NewMsgTx(wire.TxVersion)
	r = bytes.NewReader(f.PrevTx)
	if err := tx.DeserializeNoWitness(r); err != nil {
		return nil, codec.Invalid("prev tx: %v", err)
	}
	if r.Len() != 0 {
		return nil, codec.Invalid("prev tx: %d trailing bytes", r.Len())
	}

	return tx, nil
}

// PrevOut returns the output spent by this input.
func (f *FundingInput) PrevOut() (*wire.TxOut, error) {
	tx, err := f.ParsePrevTx()
	if err != nil {
		return nil, err
	}
	if int(f.PrevTxVout) >= len(tx.TxOut) {
		return nil, codec.Invalid("prev tx vout %d out of range, tx "+
			"has %d outputs", f.PrevTxVout, len(tx.TxOut))
	}

	return tx.TxOut[f.PrevTxVout], nil
}

// OutPoint returns the outpoint spent by this input.
func (f *FundingInput) OutPoint() (wire.OutPoint, error) {
	tx, err := f.ParsePrevTx()
	if err != nil {
		return wire.OutPoint{}, err
	}

	return wire.OutPoint{Hash: tx.TxHash(), Index: f.PrevTxVout}, nil
}

// Value returns the value of the spent output.
func (f *FundingInput) Value() (*amount.Value, error) {
	out, err := f.PrevOut()
	if err != nil {
		return nil, err
	}

	return amount.ValueFromAmount(btcutil.Amount(out.Value))
}

// Validate checks that the previous transaction parses, that the spent
// output exists, and that it can be spent with a witness.
func (f *FundingInput) Validate() error {
	out, err := f.PrevOut()
	if err != nil {
		return fmt.Errorf("funding input %d: %w", f.InputSerialID, err)
	}

	if !txscript.IsWitnessProgram(out.PkScript) && len(f.RedeemScript) == 0 {
		return fmt.Errorf("funding input %d: %w", f.InputSerialID,
			codec.Invalid("prev output is not a witness program "+
				"and no redeem script was given"))
	}
	if len(f.RedeemScript) > 0 && !txscript.IsWitnessProgram(f.RedeemScript) {
		return fmt.Errorf("funding input %d: %w", f.InputSerialID,
			codec.Invalid("redeem script is not a witness program"))
	}

	return nil
}

// readFundingInputs reads a BigSize count followed by that many inputs.
func readFundingInputs(r *codec.Reader) ([]FundingInput, error) {
	n, err := r.ReadBigSizeLen()
	if err != nil {
		return nil, err
	}

	inputs := make([]FundingInput, n)
	for i := range inputs {
		if err := inputs[i].Decode(r); err != nil {
			return nil, fmt.Errorf("funding input %d: %w", i, err)
		}
	}

	return inputs, nil
}

// writeFundingInputs writes a BigSize count followed by the inputs.
func writeFundingInputs(w *bytes.Buffer, inputs []FundingInput) error {
	if err := codec.WriteBigSize(w, uint64(len(inputs))); err != nil {
		return err
	}
	for i := range inputs {
		if err := inputs[i].Encode(w); err != nil {
			return err
		}
	}

	return nil
}

// totalFunding sums the values of the given inputs.
func totalFunding(inputs []FundingInput) (*amount.Value, error) {
	total := amount.ZeroValue()
	for i := range inputs {
		v, err := inputs[i].Value()
		if err != nil {
			return nil, fmt.Errorf("funding input %d: %w",
				inputs[i].InputSerialID, err)
		}
		total.Add(v)
	}

	return total, nil
}

// checkUniqueSerialIDs fails if two inputs share a serial id.
func checkUniqueSerialIDs(inputs []FundingInput) error {
	seen := make(map[uint64]struct{}, len(inputs))
	for _, in := range inputs {
		if _, ok := seen[in.InputSerialID]; ok {
			return codec.Invalid("duplicate input serial id %d",
				in.InputSerialID)
		}
		seen[in.InputSerialID] = struct{}{}
	}

	return nil
}
