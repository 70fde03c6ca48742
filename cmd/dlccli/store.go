package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dlcgo/dlcd/dlcdb"
	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/dlcgo/dlcd/dlcwire/pre163"
	"github.com/urfave/cli"
)

var storeCommand = cli.Command{
	Name:     "store",
	Category: "Store",
	Usage:    "Persist messages in the local message store.",
	Subcommands: []cli.Command{
		storePutCommand,
		storeGetCommand,
		storeListCommand,
		storeDeleteCommand,
		storeLinkCommand,
		storeMigrateCommand,
	},
}

// openStore opens the message store of the configured network.
func openStore(ctx *cli.Context) (*dlcdb.DB, func(), error) {
	cfg := getConfig(ctx)

	db, err := dlcdb.Open(cfg.dbDir())
	if err != nil {
		return nil, nil, err
	}

	cleanUp := func() {
		if err := db.Close(); err != nil {
			log.Errorf("Unable to close store: %v", err)
		}
	}

	return db, cleanUp, nil
}

// storedRecord is the JSON form of a stored record.
type storedRecord struct {
	Kind    string             `json:"kind"`
	ID      dlcwire.ContractID `json:"id"`
	Schema  string             `json:"schema"`
	SavedAt time.Time          `json:"savedAt"`
	Message json.RawMessage    `json:"message"`
}

func newStoredRecord(rec *dlcdb.Record) (*storedRecord, error) {
	msg, err := dlcwire.MessageToJSON(rec.Msg)
	if err != nil {
		return nil, err
	}

	return &storedRecord{
		Kind:    rec.Kind.String(),
		ID:      rec.ID,
		Schema:  rec.Schema.String(),
		SavedAt: rec.SavedAt,
		Message: msg,
	}, nil
}

// kindAndID parses the kind and id positional arguments.
func kindAndID(ctx *cli.Context) (dlcdb.Kind, dlcwire.ContractID, error) {
	var id dlcwire.ContractID
	if ctx.NArg() != 2 {
		return 0, id, fmt.Errorf("kind and id arguments required")
	}

	kind, err := dlcdb.ParseKind(ctx.Args().Get(0))
	if err != nil {
		return 0, id, err
	}

	id, err = contractIDArg(ctx.Args().Get(1), "id")

	return kind, id, err
}

var storePutCommand = cli.Command{
	Name:      "put",
	Usage:     "Store a hex encoded message.",
	ArgsUsage: "msg",
	Description: `
	Offers are stored under their temporary contract id, sign and cancel
	messages under their contract id. Accepts are stored under the
	contract id given with --contractid, or the one previously linked to
	their temporary contract id.

	With --pre163 the message is stored in the older schema as is and
	upgraded when read; see the migrate command.`,
	Flags: []cli.Flag{
		pre163Flag,
		cli.StringFlag{
			Name:  "contractid",
			Usage: "the contract id an accept is stored under",
		},
	},
	Action: storePut,
}

func storePut(ctx *cli.Context) error {
	msg, err := decodeArg(ctx)
	if err != nil {
		return err
	}

	db, cleanUp, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()

	if ctx.IsSet("contractid") {
		contractID, err := contractIDArg(
			ctx.String("contractid"), "contractid",
		)
		if err != nil {
			return err
		}

		var tempID dlcwire.ContractID
		switch m := msg.(type) {
		case *dlcwire.DlcAccept:
			tempID = m.TemporaryContractID
		case *pre163.DlcAccept:
			tempID = m.TemporaryContractID
		default:
			return fmt.Errorf("--contractid only applies to accepts")
		}

		if err := db.LinkContractID(tempID, contractID); err != nil {
			return err
		}
	}

	if ctx.Bool("pre163") {
		err = db.ImportPre163(msg)
	} else {
		err = db.SaveMessage(msg)
	}
	if err != nil {
		return err
	}

	log.Infof("Stored %v", msg.MsgType())

	return printJSON(ctx.App.Writer, map[string]interface{}{
		"stored": msg.MsgType().String(),
	})
}

var storeGetCommand = cli.Command{
	Name:      "get",
	Usage:     "Print a stored message.",
	ArgsUsage: "offer|accept|sign|cancel id",
	Action:    storeGet,
}

func storeGet(ctx *cli.Context) error {
	kind, id, err := kindAndID(ctx)
	if err != nil {
		return err
	}

	db, cleanUp, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()

	rec, err := db.Fetch(kind, id)
	if err != nil {
		return err
	}

	out, err := newStoredRecord(rec)
	if err != nil {
		return err
	}

	return printJSON(ctx.App.Writer, out)
}

var storeListCommand = cli.Command{
	Name:      "list",
	Usage:     "List the stored messages of a kind.",
	ArgsUsage: "offer|accept|sign|cancel",
	Action:    storeList,
}

func storeList(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("kind argument required")
	}
	kind, err := dlcdb.ParseKind(ctx.Args().First())
	if err != nil {
		return err
	}

	db, cleanUp, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()

	records := []*storedRecord{}
	err = db.ForEach(kind, func(rec *dlcdb.Record) error {
		out, err := newStoredRecord(rec)
		if err != nil {
			return err
		}
		records = append(records, out)

		return nil
	})
	if err != nil {
		return err
	}

	return printJSON(ctx.App.Writer, records)
}

var storeDeleteCommand = cli.Command{
	Name:      "delete",
	Usage:     "Delete a stored message.",
	ArgsUsage: "offer|accept|sign|cancel id",
	Action:    storeDelete,
}

func storeDelete(ctx *cli.Context) error {
	kind, id, err := kindAndID(ctx)
	if err != nil {
		return err
	}

	db, cleanUp, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()

	if err := db.Delete(kind, id); err != nil {
		return err
	}

	log.Infof("Deleted %v %v", kind, id)

	return nil
}

var storeLinkCommand = cli.Command{
	Name:      "link",
	Usage:     "Record the contract id a temporary contract id became.",
	ArgsUsage: "tempcontractid contractid",
	Action:    storeLink,
}

func storeLink(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return fmt.Errorf("tempcontractid and contractid arguments " +
			"required")
	}

	tempID, err := contractIDArg(ctx.Args().Get(0), "tempcontractid")
	if err != nil {
		return err
	}
	contractID, err := contractIDArg(ctx.Args().Get(1), "contractid")
	if err != nil {
		return err
	}

	db, cleanUp, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()

	return db.LinkContractID(tempID, contractID)
}

var storeMigrateCommand = cli.Command{
	Name:  "migrate",
	Usage: "Rewrite every pre-163 message in the current schema.",
	Action: func(ctx *cli.Context) error {
		db, cleanUp, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer cleanUp()

		n, err := db.MigratePre163(nil)
		if err != nil {
			return err
		}

		return printJSON(ctx.App.Writer, map[string]int{
			"migrated": n,
		})
	},
}
