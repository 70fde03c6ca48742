package dlcwire

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/dlcgo/dlcd/codec"
)

// unmarshalFixedHex decodes a hex string into dst, which it must fill
// exactly.
func unmarshalFixedHex(dst, text []byte, name string) error {
	if len(text) != hex.EncodedLen(len(dst)) {
		return codec.Invalid("%s must be %d bytes, got %d hex chars",
			name, len(dst), len(text))
	}
	if _, err := hex.Decode(dst, text); err != nil {
		return codec.Invalid("%s: %v", name, err)
	}

	return nil
}

// marshalHex hex encodes b for use as a JSON string.
func marshalHex(b []byte) ([]byte, error) {
	out := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(out, b)

	return out, nil
}

// ContractID is a 32 byte identifier for a contract. Before the funding
// transaction is known the parties use a temporary id chosen by the offerer.
type ContractID [32]byte

// String returns the hex encoding of the ContractID.
func (c ContractID) String() string {
	return hex.EncodeToString(c[:])
}

// MarshalText encodes the id as hex.
func (c ContractID) MarshalText() ([]byte, error) {
	return marshalHex(c[:])
}

// UnmarshalText decodes a hex encoded id.
func (c *ContractID) UnmarshalText(text []byte) error {
	return unmarshalFixedHex(c[:], text, "contract id")
}

// ComputeContractID derives the final contract id from the funding
// transaction. The txid in display byte order is XOR'd with the temporary
// contract id, then the last two bytes are XOR'd with the big endian
// funding output index.
func ComputeContractID(fundTxID chainhash.Hash, outputIndex uint16,
	tempID ContractID) ContractID {

	var cid ContractID
	for i := 0; i < len(cid); i++ {
		cid[i] = fundTxID[len(fundTxID)-1-i] ^ tempID[i]
	}
	cid[30] ^= byte(outputIndex >> 8)
	cid[31] ^= byte(outputIndex)

	return cid
}

// Sig is a 64 byte compact signature.
type Sig [64]byte

// MarshalText encodes the signature as hex.
func (s Sig) MarshalText() ([]byte, error) {
	return marshalHex(s[:])
}

// UnmarshalText decodes a hex encoded signature.
func (s *Sig) UnmarshalText(text []byte) error {
	return unmarshalFixedHex(s[:], text, "signature")
}

// PubKey is a 33 byte SEC1 compressed public key as it appears on the wire.
// It is kept in serialized form so that any 33 bytes round trip; Parse
// checks that it is a valid point.
type PubKey [33]byte

// NewPubKey serializes a btcec public key.
func NewPubKey(key *btcec.PublicKey) PubKey {
	var p PubKey
	copy(p[:], key.SerializeCompressed())

	return p
}

// Parse returns the public key, failing unless the bytes are a valid
// compressed secp256k1 point.
func (p PubKey) Parse() (*btcec.PublicKey, error) {
	if p[0] != 0x02 && p[0] != 0x03 {
		return nil, codec.Invalid("public key is not compressed: "+
			"prefix %#x", p[0])
	}

	key, err := btcec.ParsePubKey(p[:])
	if err != nil {
		return nil, codec.Invalid("public key: %v", err)
	}

	return key, nil
}

// String returns the hex encoding of the key.
func (p PubKey) String() string {
	return hex.EncodeToString(p[:])
}

// MarshalText encodes the key as hex.
func (p PubKey) MarshalText() ([]byte, error) {
	return marshalHex(p[:])
}

// UnmarshalText decodes a hex encoded key.
func (p *PubKey) UnmarshalText(text []byte) error {
	return unmarshalFixedHex(p[:], text, "public key")
}

// XOnlyPubKey is a 32 byte BIP-340 public key or nonce.
type XOnlyPubKey [32]byte

// MarshalText encodes the key as hex.
func (x XOnlyPubKey) MarshalText() ([]byte, error) {
	return marshalHex(x[:])
}

// UnmarshalText decodes a hex encoded key.
func (x *XOnlyPubKey) UnmarshalText(text []byte) error {
	return unmarshalFixedHex(x[:], text, "x-only public key")
}

// AdaptorSig is a 65 byte ECDSA adaptor signature.
type AdaptorSig [65]byte

// MarshalText encodes the signature as hex.
func (a AdaptorSig) MarshalText() ([]byte, error) {
	return marshalHex(a[:])
}

// UnmarshalText decodes a hex encoded signature.
func (a *AdaptorSig) UnmarshalText(text []byte) error {
	return unmarshalFixedHex(a[:], text, "adaptor signature")
}

// DleqProof is the 97 byte discrete log equality proof that accompanies an
// adaptor signature.
type DleqProof [97]byte

// MarshalText encodes the proof as hex.
func (d DleqProof) MarshalText() ([]byte, error) {
	return marshalHex(d[:])
}

// UnmarshalText decodes a hex encoded proof.
func (d *DleqProof) UnmarshalText(text []byte) error {
	return unmarshalFixedHex(d[:], text, "dleq proof")
}

// HexBytes is a variable length byte string that is hex encoded in JSON.
type HexBytes []byte

// MarshalText encodes the bytes as hex.
func (h HexBytes) MarshalText() ([]byte, error) {
	return marshalHex(h)
}

// UnmarshalText decodes hex. An empty string decodes to nil.
func (h *HexBytes) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*h = nil
		return nil
	}

	b := make([]byte, hex.DecodedLen(len(text)))
	if _, err := hex.Decode(b, text); err != nil {
		return codec.Invalid("hex bytes: %v", err)
	}
	*h = b

	return nil
}

// ChainHash identifies the chain a contract lives on by its genesis block
// hash, in internal byte order. Unlike chainhash.Hash it is rendered as
// plain hex, not reversed.
type ChainHash [32]byte

// knownNets is the set of networks a ChainHash can be resolved to.
var knownNets = []*chaincfg.Params{
	&chaincfg.MainNetParams,
	&chaincfg.TestNet3Params,
	&chaincfg.RegressionNetParams,
	&chaincfg.SigNetParams,
	&chaincfg.SimNetParams,
}

// ChainHashFromParams returns the chain hash of the given network.
func ChainHashFromParams(params *chaincfg.Params) ChainHash {
	return ChainHash(*params.GenesisHash)
}

// NetParams returns the parameters of the network identified by the hash.
func (c ChainHash) NetParams() (*chaincfg.Params, error) {
	for _, params := range knownNets {
		if ChainHashFromParams(params) == c {
			return params, nil
		}
	}

	return nil, fmt.Errorf("unknown chain hash %x", c[:])
}

// MarshalText encodes the hash as hex.
func (c ChainHash) MarshalText() ([]byte, error) {
	return marshalHex(c[:])
}

// UnmarshalText decodes a hex encoded hash.
func (c *ChainHash) UnmarshalText(text []byte) error {
	return unmarshalFixedHex(c[:], text, "chain hash")
}
