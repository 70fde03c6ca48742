package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/dlcgo/dlcd/amount"
	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/dlcgo/dlcd/dlcwire/pre163"
	"github.com/urfave/cli"
)

var pre163Flag = cli.BoolFlag{
	Name:  "pre163",
	Usage: "the message uses the schema that predates protocol versions",
}

// printJSON pretty prints v to the app's writer.
func printJSON(w io.Writer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "    "); err != nil {
		return err
	}
	out.WriteString("\n")
	_, err = out.WriteTo(w)

	return err
}

// printMessage prints msg as a JSON envelope.
func printMessage(w io.Writer, msg dlcwire.Message) error {
	b, err := dlcwire.MessageToJSON(msg)
	if err != nil {
		return err
	}

	return printJSON(w, json.RawMessage(b))
}

// printHex prints the encoding of msg as hex.
func printHex(w io.Writer, msg dlcwire.Message) error {
	b, err := dlcwire.Serialize(msg)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, hex.EncodeToString(b))

	return err
}

// hexArg decodes the first positional argument as hex.
func hexArg(ctx *cli.Context, name string) ([]byte, error) {
	if !ctx.Args().Present() {
		return nil, fmt.Errorf("%s argument missing", name)
	}

	b, err := hex.DecodeString(strings.TrimSpace(ctx.Args().First()))
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s: %w", name, err)
	}

	return b, nil
}

// contractIDArg parses a hex contract id.
func contractIDArg(s, name string) (dlcwire.ContractID, error) {
	var id dlcwire.ContractID
	if err := id.UnmarshalText([]byte(s)); err != nil {
		return id, fmt.Errorf("invalid %s: %w", name, err)
	}

	return id, nil
}

// decodeArg decodes the hex message argument in the schema chosen by the
// --pre163 flag.
func decodeArg(ctx *cli.Context) (dlcwire.Message, error) {
	b, err := hexArg(ctx, "msg")
	if err != nil {
		return nil, err
	}

	if ctx.Bool("pre163") {
		return pre163.DecodeMessage(b)
	}

	return dlcwire.DecodeMessage(b)
}

var decodeCommand = cli.Command{
	Name:      "decode",
	Category:  "Messages",
	Usage:     "Decode a hex encoded message into JSON.",
	ArgsUsage: "msg",
	Flags:     []cli.Flag{pre163Flag},
	Action:    decode,
}

func decode(ctx *cli.Context) error {
	msg, err := decodeArg(ctx)
	if err != nil {
		return err
	}

	return printMessage(ctx.App.Writer, msg)
}

var encodeCommand = cli.Command{
	Name:     "encode",
	Category: "Messages",
	Usage:    "Encode a JSON message envelope as hex.",
	Description: `
	Encode a message given as a JSON envelope of the form
	{"type": <message type>, "message": {...}}, as printed by decode.`,
	ArgsUsage: "json",
	Action:    encode,
}

func encode(ctx *cli.Context) error {
	if !ctx.Args().Present() {
		return fmt.Errorf("json argument missing")
	}

	msg, err := dlcwire.MessageFromJSON([]byte(ctx.Args().First()))
	if err != nil {
		return fmt.Errorf("unable to parse message: %w", err)
	}

	return printHex(ctx.App.Writer, msg)
}

var upgradeCommand = cli.Command{
	Name:      "upgrade",
	Category:  "Messages",
	Usage:     "Convert a pre-163 message to the current schema.",
	ArgsUsage: "msg",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name: "tempcontractid",
			Usage: "the temporary contract id of an upgraded " +
				"offer, derived from the offer if unset",
		},
	},
	Action: upgrade,
}

func upgrade(ctx *cli.Context) error {
	b, err := hexArg(ctx, "msg")
	if err != nil {
		return err
	}

	old, err := pre163.DecodeMessage(b)
	if err != nil {
		return err
	}

	var msg dlcwire.Message
	offer, isOffer := old.(*pre163.DlcOffer)
	switch {
	case isOffer && ctx.IsSet("tempcontractid"):
		tempID, err := contractIDArg(
			ctx.String("tempcontractid"), "tempcontractid",
		)
		if err != nil {
			return err
		}
		msg, err = pre163.OfferFromPre163(offer, tempID)
		if err != nil {
			return err
		}

	default:
		msg, err = pre163.FromPre163(old)
		if err != nil {
			return err
		}
	}

	return printHex(ctx.App.Writer, msg)
}

var downgradeCommand = cli.Command{
	Name:      "downgrade",
	Category:  "Messages",
	Usage:     "Convert a message to the pre-163 schema.",
	ArgsUsage: "msg",
	Action:    downgrade,
}

func downgrade(ctx *cli.Context) error {
	b, err := hexArg(ctx, "msg")
	if err != nil {
		return err
	}

	msg, err := dlcwire.DecodeMessage(b)
	if err != nil {
		return err
	}

	old, err := pre163.ToPre163(msg)
	if err != nil {
		return err
	}

	return printHex(ctx.App.Writer, old)
}

var validateCommand = cli.Command{
	Name:      "validate",
	Category:  "Messages",
	Usage:     "Decode a message and check its semantic rules.",
	ArgsUsage: "msg",
	Flags:     []cli.Flag{pre163Flag},
	Action:    validate,
}

func validate(ctx *cli.Context) error {
	msg, err := decodeArg(ctx)
	if err != nil {
		return err
	}

	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid %v: %w", msg.MsgType(), err)
	}

	return printJSON(ctx.App.Writer, map[string]interface{}{
		"type":  msg.MsgType().String(),
		"valid": true,
	})
}

var describeCommand = cli.Command{
	Name:     "describe",
	Category: "Messages",
	Usage:    "Summarize the terms of an offer.",
	Description: `
	Print the collateral of both parties, the funding, change and payout
	addresses of the offerer, and for enumerated contracts the payout and
	profit of both parties for every outcome.

	Addresses are rendered for the network of the offer's chain hash, or
	for --network when the chain hash is unknown or the flag is set.`,
	ArgsUsage: "offer",
	Flags: []cli.Flag{
		pre163Flag,
		cli.StringFlag{
			Name:  "network",
			Usage: "the network to render addresses for",
		},
	},
	Action: describe,
}

// outcomeSummary is the result of a single enumerated outcome.
type outcomeSummary struct {
	Outcome      string `json:"outcome"`
	OfferPayout  string `json:"offerPayout"`
	OfferPnL     string `json:"offerPnl"`
	AcceptPayout string `json:"acceptPayout"`
	AcceptPnL    string `json:"acceptPnl"`
}

// offerSummary is the output of the describe command.
type offerSummary struct {
	TemporaryContractID dlcwire.ContractID `json:"temporaryContractId"`
	Network             string             `json:"network"`
	TotalCollateral     string             `json:"totalCollateral"`
	OfferCollateral     string             `json:"offerCollateral"`
	AcceptCollateral    string             `json:"acceptCollateral"`
	OfferFunding        string             `json:"offerFunding"`
	FeeRatePerVb        uint64             `json:"feeRatePerVb"`
	CetLocktime         uint32             `json:"cetLocktime"`
	RefundLocktime      uint32             `json:"refundLocktime"`
	FundingAddress      string             `json:"fundingAddress"`
	ChangeAddress       string             `json:"changeAddress"`
	PayoutAddress       string             `json:"payoutAddress"`
	Outcomes            []outcomeSummary   `json:"outcomes,omitempty"`
	NumericContracts    int                `json:"numericContracts,omitempty"`
}

// describeParams picks the network addresses are rendered for.
func describeParams(ctx *cli.Context, offer *dlcwire.DlcOffer) (
	*chaincfg.Params, error) {

	if ctx.IsSet("network") {
		return networkParams(ctx.String("network"))
	}

	if params, err := offer.ChainHash.NetParams(); err == nil {
		return params, nil
	}

	return getConfig(ctx).netParams, nil
}

// summarizeOffer computes the describe output of an offer.
func summarizeOffer(offer *dlcwire.DlcOffer,
	params *chaincfg.Params) (*offerSummary, error) {

	total := offer.ContractInfo.TotalCollateral()
	offerCollateral := amount.FromBtcutil(offer.OfferCollateral)
	acceptCollateral := amount.FromBtcutil(total).Sub(offerCollateral)

	funding, err := offer.TotalFunding()
	if err != nil {
		return nil, err
	}

	addrs, err := offer.Addresses(params)
	if err != nil {
		return nil, err
	}

	summary := &offerSummary{
		TemporaryContractID: offer.TemporaryContractID,
		Network:             params.Name,
		TotalCollateral:     amount.FromBtcutil(total).String(),
		OfferCollateral:     offerCollateral.String(),
		AcceptCollateral:    acceptCollateral.String(),
		OfferFunding:        funding.String(),
		FeeRatePerVb:        offer.FeeRatePerVb,
		CetLocktime:         offer.CetLocktime,
		RefundLocktime:      offer.RefundLocktime,
		FundingAddress:      addrs.Funding.EncodeAddress(),
		ChangeAddress:       addrs.Change.EncodeAddress(),
		PayoutAddress:       addrs.Payout.EncodeAddress(),
	}

	for _, pair := range offer.ContractInfo.Pairs() {
		enum := pair.ContractDescriptor.Enumerated
		if enum == nil {
			summary.NumericContracts++
			continue
		}

		for _, o := range enum.Outcomes {
			offerPayout := amount.FromBtcutil(o.LocalPayout)
			acceptPayout := amount.FromBtcutil(total).
				Sub(offerPayout)
			offerPnL := offerPayout.SubN(offerCollateral)
			acceptPnL := acceptPayout.SubN(acceptCollateral)

			summary.Outcomes = append(
				summary.Outcomes, outcomeSummary{
					Outcome:      o.Outcome,
					OfferPayout:  offerPayout.String(),
					OfferPnL:     offerPnL.String(),
					AcceptPayout: acceptPayout.String(),
					AcceptPnL:    acceptPnL.String(),
				},
			)
		}
	}

	return summary, nil
}

func describe(ctx *cli.Context) error {
	msg, err := decodeArg(ctx)
	if err != nil {
		return err
	}
	if ctx.Bool("pre163") {
		msg, err = pre163.FromPre163(msg)
		if err != nil {
			return err
		}
	}

	offer, ok := msg.(*dlcwire.DlcOffer)
	if !ok {
		return fmt.Errorf("expected an offer, got %v", msg.MsgType())
	}

	params, err := describeParams(ctx, offer)
	if err != nil {
		return err
	}

	summary, err := summarizeOffer(offer, params)
	if err != nil {
		return err
	}

	return printJSON(ctx.App.Writer, summary)
}
