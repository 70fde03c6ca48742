package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

// configKey is the App.Metadata key the loaded config is kept under.
const configKey = "config"

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[dlccli] %v\n", err)
	os.Exit(1)
}

// getConfig returns the config loaded before the command ran.
func getConfig(ctx *cli.Context) *config {
	return ctx.App.Metadata[configKey].(*config)
}

// loadAppConfig reads the config file named by the global flags, applies the
// flag overrides and starts logging.
func loadAppConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx.GlobalString("configfile"))
	if err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}

	if ctx.GlobalIsSet("appdir") {
		cfg.AppDir = ctx.GlobalString("appdir")
	}
	if ctx.GlobalIsSet("datadir") {
		cfg.DataDir = ctx.GlobalString("datadir")
	}
	if ctx.GlobalIsSet("network") {
		cfg.Network = ctx.GlobalString("network")
	}
	if ctx.GlobalIsSet("debuglevel") {
		cfg.DebugLevel = ctx.GlobalString("debuglevel")
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	logWriter, err := setupLoggers(cfg)
	if err != nil {
		return err
	}
	ctx.App.Metadata[configKey] = cfg
	ctx.App.Metadata["logwriter"] = logWriter

	log.Debugf("Loaded config, network=%v datadir=%v", cfg.Network,
		cfg.DataDir)

	return nil
}

// closeApp stops the log rotator started by loadAppConfig.
func closeApp(ctx *cli.Context) error {
	if closer, ok := ctx.App.Metadata["logwriter"].(interface {
		Close() error
	}); ok {
		return closer.Close()
	}

	return nil
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "dlccli"
	app.Usage = "inspect, convert and store DLC negotiation messages"
	app.Metadata = make(map[string]interface{})
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:      "configfile",
			Value:     DefaultConfigFile,
			Usage:     "The path to the config file.",
			TakesFile: true,
		},
		cli.StringFlag{
			Name:      "appdir",
			Value:     DefaultAppDir,
			Usage:     "The base directory of the store and logs.",
			TakesFile: true,
		},
		cli.StringFlag{
			Name:      "datadir",
			Usage:     "The directory of the message store.",
			TakesFile: true,
		},
		cli.StringFlag{
			Name: "network, n",
			Usage: "The network addresses are rendered for and " +
				"messages are stored under, e.g. mainnet, " +
				"testnet, etc.",
			Value: defaultNetwork,
		},
		cli.StringFlag{
			Name:  "debuglevel",
			Usage: "The logging level, optionally per subsystem.",
			Value: defaultDebugLevel,
		},
	}
	app.Before = loadAppConfig
	app.After = closeApp
	app.Commands = []cli.Command{
		decodeCommand,
		encodeCommand,
		upgradeCommand,
		downgradeCommand,
		validateCommand,
		describeCommand,
		storeCommand,
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}
