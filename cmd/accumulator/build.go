package main

import (
	"fmt"

	"github.com/iotaledger/accumulator.go/accumulator"
	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/hashing"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

func genCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "gen",
		Usage:     "generate file with random records",
		ArgsUsage: "<records file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "n", Usage: "number of records (default from config)"},
			&cli.IntFlag{Name: "size", Usage: "record size in bytes (default from config)"},
			&cli.Int64Flag{Name: "seed", Usage: "random seed (default from config)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected records file name")
			}
			n := lo.Ternary(c.IsSet("n"), c.Int("n"), e.cfg.Bench.Leaves)
			size := lo.Ternary(c.IsSet("size"), c.Int("size"), e.cfg.Bench.RecordSize)
			seed := lo.Ternary(c.IsSet("seed"), c.Int64("seed"), e.cfg.Bench.Seed)
			if n <= 0 || size <= 0 {
				return fmt.Errorf("number of records and record size must be positive")
			}
			w, err := common.CreateRecordStreamFile(c.Args().First())
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			err = common.NewRandRecordIterator(common.RandRecordParams{
				Seed:       seed,
				NumRecords: n,
				RecordSize: size,
			}).Iterate(func(record []byte) bool {
				if err = w.Write(record); err != nil {
					return false
				}
				return true
			})
			if err != nil {
				return err
			}
			num, bytes := w.Stats()
			e.log.Info("records generated", "file", c.Args().First(), "records", num, "bytes", bytes)
			_, _ = fmt.Fprintf(c.App.Writer, "%d records (%s) written to '%s'\n", num, formatBytes(bytes), c.Args().First())
			return nil
		},
	}
}

func readRecordsFile(fname string) ([][]byte, error) {
	it, err := common.OpenRecordStreamFile(fname)
	if err != nil {
		return nil, err
	}
	defer func() { _ = it.Close() }()
	return common.CollectRecords(it)
}

func buildCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "commit records to the root and save leaves to the snapshot",
		ArgsUsage: "<records file> <snapshot file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "concurrency", Usage: "number of hashing goroutines, 0 means all CPUs"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected records file and snapshot file")
			}
			records, err := readRecordsFile(c.Args().Get(0))
			if err != nil {
				return err
			}
			opts := []accumulator.Option{
				accumulator.WithHasher(e.hasher()),
				accumulator.WithLogger(e.log),
			}
			if c.Int("concurrency") > 0 {
				opts = append(opts, accumulator.WithConcurrency(c.Int("concurrency")))
			}
			tr := accumulator.Build(records, opts...)
			snap, err := openSnapshot(e, c.Args().Get(1), false)
			if err != nil {
				return err
			}
			root, err := snap.Save(tr)
			if err != nil {
				return err
			}
			if err = snap.persist(); err != nil {
				return err
			}
			t := newTable(c.App.Writer, "Accumulator")
			t.AppendRow(table.Row{"Root", root.String()})
			t.AppendRow(table.Row{"Multihash", hashing.MultihashString(tr.Hasher(), root)})
			t.AppendRow(table.Row{"Hash function", tr.Hasher().Name()})
			t.AppendRow(table.Row{"Leaves", tr.Len()})
			t.AppendRow(table.Row{"Height", tr.Height()})
			t.AppendRow(table.Row{"Nodes", tr.NumNodes()})
			t.AppendRow(table.Row{"Snapshot", snap.fname})
			t.Render()
			return nil
		},
	}
}
