package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/iotaledger/accumulator.go/accumulator"
	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/proof"
	"github.com/iotaledger/accumulator.go/signing"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
)

func proveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "prove",
		Usage: "produce proof of inclusion or exclusion of the record",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "snapshot", Aliases: []string{"s"}, Required: true, Usage: "snapshot file"},
			&cli.StringFlag{Name: "root", Usage: "root of the leaf set, may be omitted if snapshot contains one"},
			&cli.StringFlag{Name: "record", Usage: "record as a string"},
			&cli.StringFlag{Name: "record-hex", Usage: "record in hex"},
			&cli.StringFlag{Name: "digest", Usage: "hash of the record, hex or multihash"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "file to write the proof to"},
		},
		Action: func(c *cli.Context) error {
			snap, err := openSnapshot(e, c.String("snapshot"), true)
			if err != nil {
				return err
			}
			root, err := snap.resolveRoot(c.String("root"))
			if err != nil {
				return err
			}
			tr, err := snap.Load(root, accumulator.WithLogger(e.log))
			if err != nil {
				return err
			}
			var target common.Digest
			switch {
			case c.IsSet("digest"):
				if target, err = parseDigest(c.String("digest")); err != nil {
					return err
				}
			case c.IsSet("record-hex"):
				rec, err := hex.DecodeString(c.String("record-hex"))
				if err != nil {
					return err
				}
				target = tr.Hasher().Sum(rec)
			case c.IsSet("record"):
				target = tr.Hasher().Sum([]byte(c.String("record")))
			default:
				return fmt.Errorf("one of --record, --record-hex or --digest is required")
			}
			p, err := tr.Prove(target)
			if err != nil {
				return err
			}
			data := p.Bytes()
			if out := c.String("out"); out != "" {
				if err = os.WriteFile(out, data, 0o644); err != nil {
					return err
				}
			} else {
				_, _ = fmt.Fprintln(c.App.Writer, hex.EncodeToString(data))
			}
			renderEnvelope(c, p, root, len(data))
			return nil
		},
	}
}

func renderEnvelope(c *cli.Context, p *proof.Envelope, root common.Digest, size int) {
	t := newTable(c.App.Writer, fmt.Sprintf("Proof of %s", p.Kind))
	t.AppendRow(table.Row{"Root", root.String()})
	t.AppendRow(table.Row{"Target", p.Target.String()})
	t.AppendRow(table.Row{"Hash function", p.Hash})
	switch p.Kind {
	case proof.KindInclusion:
		t.AppendRow(table.Row{"Leaf index", p.Inclusion.LeafIndex()})
		t.AppendRow(table.Row{"Steps", len(p.Inclusion)})
	case proof.KindExclusion:
		pred, succ, _ := p.Exclusion.Bracket()
		t.AppendRow(table.Row{"Predecessor", pred.String()})
		t.AppendRow(table.Row{"Successor", succ.String()})
		t.AppendRow(table.Row{"Steps", len(p.Exclusion.Predecessor)})
	}
	t.AppendRow(table.Row{"Size", formatBytes(size)})
	t.Render()
}

func verifyCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "verify the proof against the root or the signed root",
		ArgsUsage: "<proof file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Usage: "root, hex or multihash"},
			&cli.IntFlag{Name: "leaves", Usage: "number of leaves committed to the root"},
			&cli.StringFlag{Name: "signed-root", Usage: "signed root file, replaces --root and --leaves"},
			&cli.StringFlag{Name: "pub", Usage: "public key in hex to check the signed root with"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected proof file")
			}
			data, err := os.ReadFile(c.Args().First())
			if err != nil {
				return err
			}
			p, err := proof.EnvelopeFromBytes(data)
			if err != nil {
				return fmt.Errorf("decoding proof: %w", err)
			}
			var root common.Digest
			start := time.Now()
			switch {
			case c.IsSet("signed-root"):
				var sr *signing.SignedRoot
				if sr, err = loadSignedRoot(c.String("signed-root"), c.String("pub")); err != nil {
					return err
				}
				if c.String("pub") == "" {
					e.log.Warn("signature of the root is not checked, use --pub")
				}
				root = sr.Root
				err = sr.ValidateProof(p)
			case c.IsSet("root"):
				if root, err = parseDigest(c.String("root")); err != nil {
					return err
				}
				if c.IsSet("leaves") {
					err = p.ValidateInTree(root, c.Int("leaves"))
				} else {
					e.log.Warn("number of leaves is unknown, depth of the proof is not checked")
					err = p.Validate(root)
				}
			default:
				return fmt.Errorf("one of --root or --signed-root is required")
			}
			e.log.Debug("proof verified", "kind", p.Kind.String(), "valid", err == nil, "elapsed", time.Since(start))
			renderEnvelope(c, p, root, len(data))
			if err != nil {
				return fmt.Errorf("proof is INVALID: %w", err)
			}
			_, _ = fmt.Fprintf(c.App.Writer, "%s is VALID\n", p)
			return nil
		},
	}
}
