package main

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/dlcgo/dlcd/build"
	"github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "dlccli.conf"
	defaultDataDirname    = "data"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "dlccli.log"
	defaultNetwork        = "mainnet"
	defaultDebugLevel     = "info"
)

var (
	// DefaultAppDir is the default directory holding the config file, the
	// message store and the logs.
	DefaultAppDir = btcutil.AppDataDir("dlccli", false)

	// DefaultConfigFile is the default full path of the config file.
	DefaultConfigFile = filepath.Join(DefaultAppDir, defaultConfigFilename)
)

// config defines the configuration options for dlccli. Values are read from
// the config file first and overridden by global command line flags.
//
//nolint:lll
type config struct {
	AppDir     string `long:"appdir" description:"The base directory that contains the message store and logs"`
	DataDir    string `long:"datadir" description:"The directory to store the message database in"`
	LogDir     string `long:"logdir" description:"Directory to log output"`
	Network    string `long:"network" description:"The bitcoin network addresses are rendered for" choice:"mainnet" choice:"testnet" choice:"regtest" choice:"signet" choice:"simnet"`
	DebugLevel string `long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <global-level>,<subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`

	Log *build.LogConfig `group:"log" namespace:"log"`

	// netParams is resolved from Network by validate.
	netParams *chaincfg.Params
}

// defaultConfig returns a config with all default values set.
func defaultConfig() config {
	return config{
		AppDir:     DefaultAppDir,
		Network:    defaultNetwork,
		DebugLevel: defaultDebugLevel,
		Log:        build.DefaultLogConfig(),
	}
}

// loadConfig reads the config file at configFile. A missing file is not an
// error; a malformed one is.
func loadConfig(configFile string) (*config, error) {
	cfg := defaultConfig()

	err := flags.IniParse(cleanAndExpandPath(configFile), &cfg)
	if err != nil {
		if _, ok := err.(*flags.IniError); ok {
			return nil, err
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return &cfg, nil
}

// validate normalizes the paths of the config and resolves the network.
func (c *config) validate() error {
	c.AppDir = cleanAndExpandPath(c.AppDir)
	if c.DataDir == "" {
		c.DataDir = filepath.Join(c.AppDir, defaultDataDirname)
	}
	if c.LogDir == "" {
		c.LogDir = filepath.Join(c.AppDir, defaultLogDirname)
	}
	c.DataDir = cleanAndExpandPath(c.DataDir)
	c.LogDir = cleanAndExpandPath(c.LogDir)

	params, err := networkParams(c.Network)
	if err != nil {
		return err
	}
	c.netParams = params

	return c.Log.Validate()
}

// dbDir is the directory of the message store of the configured network.
func (c *config) dbDir() string {
	return filepath.Join(c.DataDir, c.netParams.Name)
}

// networkParams maps a network name to its chain parameters.
func networkParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "simnet":
		return &chaincfg.SimNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network: %v", network)
	}
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	return filepath.Clean(os.ExpandEnv(path))
}
