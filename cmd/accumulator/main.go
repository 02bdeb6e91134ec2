// Command accumulator builds Merkle accumulators over record files, produces and verifies
// proofs of inclusion and exclusion, and signs committed roots
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/iotaledger/accumulator.go/config"
	"github.com/iotaledger/accumulator.go/hashing"
	"github.com/urfave/cli/v2"
)

const (
	AppName    = "accumulator"
	AppVersion = "0.1.0"
)

// env is shared by all commands. It is initialized in the Before hook
type env struct {
	cfg *config.Config
	log *slog.Logger
}

func (e *env) hasher() hashing.Hasher {
	return hashing.MustByName(e.cfg.Hash)
}

func newApp() *cli.App {
	e := &env{}
	return &cli.App{
		Name:    AppName,
		Usage:   "sorted-leaf Merkle accumulator with proofs of inclusion and exclusion",
		Version: AppVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"ACCUMULATOR_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "hash",
				Usage: "hash function, overrides the configuration",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "text or json",
			},
		},
		Before: func(c *cli.Context) error {
			return e.init(c)
		},
		Commands: []*cli.Command{
			genCmd(e),
			buildCmd(e),
			proveCmd(e),
			verifyCmd(e),
			benchCmd(e),
			keygenCmd(e),
			signCmd(e),
			verifyRootCmd(e),
			hashesCmd(),
			configCmd(e),
		},
	}
}

func (e *env) init(c *cli.Context) error {
	cfg := config.Default()
	if fname := c.String("config"); fname != "" {
		var err error
		if cfg, err = config.Load(fname); err != nil {
			return err
		}
	}
	if c.IsSet("hash") {
		cfg.Hash = c.String("hash")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := cfg.Log.NewLogger(c.App.ErrWriter)
	if err != nil {
		return err
	}
	e.cfg, e.log = cfg, log
	return nil
}

func main() {
	app := newApp()
	app.ErrWriter = os.Stderr
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
