package dlcwire

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/dlcgo/dlcd/codec"
)

const (
	// LocktimeThreshold is the nLockTime value from which a locktime is
	// read as a unix timestamp rather than a block height.
	LocktimeThreshold uint32 = 500000000

	// MinOfferCollateral is the smallest collateral an offerer may put up.
	MinOfferCollateral btcutil.Amount = 1000
)

func checkProtocolVersion(version uint32) error {
	if version != ProtocolVersion {
		return codec.Invalid("unsupported protocol version %d", version)
	}

	return nil
}

// checkStandardScript fails unless spk is a script template that standard
// relay policy would accept as an output.
func checkStandardScript(name string, spk []byte) error {
	if txscript.GetScriptClass(spk) == txscript.NonStandardTy {
		return codec.Invalid("%s %x is not a standard script", name, spk)
	}

	return nil
}

func checkFundingPubKey(key PubKey) error {
	if _, err := key.Parse(); err != nil {
		return fmt.Errorf("funding pubkey: %w", err)
	}

	return nil
}

// checkLocktimes requires both locktimes to be heights or both timestamps,
// and the refund to unlock strictly after the contract execution
// transactions.
func checkLocktimes(cet, refund uint32) error {
	if (cet < LocktimeThreshold) != (refund < LocktimeThreshold) {
		return codec.Invalid("cet locktime %d and refund locktime %d "+
			"use different units", cet, refund)
	}
	if cet >= refund {
		return codec.Invalid("cet locktime %d must be before refund "+
			"locktime %d", cet, refund)
	}

	return nil
}
