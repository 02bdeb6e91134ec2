package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/iotaledger/accumulator.go/signing"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

const maxSeedAttempts = 3

func keygenCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "keygen",
		Usage:     "derive signing key from the secret seed entered from the keyboard",
		ArgsUsage: "<key file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "seed-file", Usage: "read the seed from the file instead of the keyboard"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected key file name")
			}
			seed, err := readSeed(c)
			if err != nil {
				return err
			}
			signer, err := signing.NewSigner(seed)
			// destroy seed
			for i := range seed {
				seed[i] = 0
			}
			if err != nil {
				return err
			}
			fname := c.Args().First()
			if err = writeHexFile(fname, signer.PrivateKeyBytes(), 0o600); err != nil {
				return err
			}
			if err = writeHexFile(fname+".pub", signer.PublicKeyBytes(), 0o644); err != nil {
				return err
			}
			e.log.Info("key generated", "file", fname)
			_, _ = fmt.Fprintf(c.App.Writer, "private key saved to '%s'\npublic key: %s\n", fname, hex.EncodeToString(signer.PublicKeyBytes()))
			return nil
		},
	}
}

func readSeed(c *cli.Context) ([]byte, error) {
	if fname := c.String("seed-file"); fname != "" {
		data, err := os.ReadFile(fname)
		if err != nil {
			return nil, err
		}
		return []byte(strings.TrimSpace(string(data))), nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal, use --seed-file")
	}
	for i := 0; i < maxSeedAttempts; i++ {
		_, _ = fmt.Fprintf(c.App.Writer, "please enter seed >= %d symbols and press ENTER (CTRL-C to exit) > ", signing.MinSeedLength)
		seed, err := term.ReadPassword(fd)
		_, _ = fmt.Fprintln(c.App.Writer)
		if err != nil {
			return nil, err
		}
		if len(seed) >= signing.MinSeedLength {
			return seed, nil
		}
		_, _ = fmt.Fprintln(c.App.Writer, "error: seed too short")
	}
	return nil, signing.ErrSeedTooShort
}

func signCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "sign the root of the leaf set in the snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "snapshot", Aliases: []string{"s"}, Required: true, Usage: "snapshot file"},
			&cli.StringFlag{Name: "root", Usage: "root of the leaf set, may be omitted if snapshot contains one"},
			&cli.StringFlag{Name: "key", Aliases: []string{"k"}, Required: true, Usage: "private key file"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "file to write the signed root to"},
		},
		Action: func(c *cli.Context) error {
			key, err := readHexFile(c.String("key"))
			if err != nil {
				return err
			}
			signer, err := signing.SignerFromPrivateKeyBytes(key)
			if err != nil {
				return err
			}
			snap, err := openSnapshot(e, c.String("snapshot"), true)
			if err != nil {
				return err
			}
			root, err := snap.resolveRoot(c.String("root"))
			if err != nil {
				return err
			}
			tr, err := snap.Load(root)
			if err != nil {
				return err
			}
			sr, err := signer.SignTree(tr)
			if err != nil {
				return err
			}
			if err = snap.SaveSignedRoot(sr); err != nil {
				return err
			}
			if err = snap.persist(); err != nil {
				return err
			}
			if out := c.String("out"); out != "" {
				if err = writeHexFile(out, sr.Bytes(), 0o644); err != nil {
					return err
				}
			}
			e.log.Info("root signed", "root", root.String())
			renderSignedRoot(c, sr, hex.EncodeToString(signer.PublicKeyBytes()))
			return nil
		},
	}
}

func renderSignedRoot(c *cli.Context, sr *signing.SignedRoot, pub string) {
	t := newTable(c.App.Writer, "Signed root")
	t.AppendRow(table.Row{"Root", sr.Root.String()})
	t.AppendRow(table.Row{"Leaves", sr.LeafCount})
	t.AppendRow(table.Row{"Hash function", sr.Hash})
	t.AppendRow(table.Row{"Public key", pub})
	t.AppendRow(table.Row{"Signature", hex.EncodeToString(sr.Signature)})
	t.Render()
}

func verifyRootCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "verify-root",
		Usage:     "verify the signed root with the public key",
		ArgsUsage: "<signed root file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pub", Required: true, Usage: "public key in hex"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected signed root file")
			}
			pubBytes, err := hex.DecodeString(strings.TrimSpace(c.String("pub")))
			if err != nil {
				return err
			}
			pub, err := signing.PublicKeyFromBytes(pubBytes)
			if err != nil {
				return err
			}
			data, err := readHexFile(c.Args().First())
			if err != nil {
				return err
			}
			sr, err := signing.SignedRootFromBytes(data)
			if err != nil {
				return err
			}
			renderSignedRoot(c, sr, c.String("pub"))
			if err = signing.Verify(pub, sr); err != nil {
				return err
			}
			e.log.Debug("signed root verified", "root", sr.Root.String())
			_, _ = fmt.Fprintf(c.App.Writer, "signature of %s is VALID\n", sr)
			return nil
		},
	}
}

// loadSignedRoot reads the signed root file. With non-empty pubHex the signature is checked
func loadSignedRoot(fname, pubHex string) (*signing.SignedRoot, error) {
	data, err := readHexFile(fname)
	if err != nil {
		return nil, err
	}
	sr, err := signing.SignedRootFromBytes(data)
	if err != nil {
		return nil, err
	}
	if pubHex == "" {
		return sr, nil
	}
	pubBytes, err := hex.DecodeString(strings.TrimSpace(pubHex))
	if err != nil {
		return nil, err
	}
	pub, err := signing.PublicKeyFromBytes(pubBytes)
	if err != nil {
		return nil, err
	}
	if err = signing.Verify(pub, sr); err != nil {
		return nil, err
	}
	return sr, nil
}
