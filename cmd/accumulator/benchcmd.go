package main

import (
	"github.com/iotaledger/accumulator.go/bench"
	"github.com/iotaledger/accumulator.go/metrics"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
)

func benchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "build tree over random records and time proofs of inclusion and exclusion",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "n", Usage: "number of records (default from config)"},
			&cli.IntFlag{Name: "size", Usage: "record size in bytes (default from config)"},
			&cli.Int64Flag{Name: "seed", Usage: "random seed (default from config)"},
			&cli.IntFlag{Name: "concurrency", Usage: "number of hashing goroutines, 0 means all CPUs"},
		},
		Action: func(c *cli.Context) error {
			cfg := e.cfg.BenchConfig()
			if c.IsSet("n") {
				cfg.Leaves = c.Int("n")
			}
			if c.IsSet("size") {
				cfg.RecordSize = c.Int("size")
			}
			if c.IsSet("seed") {
				cfg.Seed = c.Int64("seed")
			}
			if c.IsSet("concurrency") {
				cfg.Concurrency = c.Int("concurrency")
			}
			rep, err := runBench(e, cfg)
			if err != nil {
				return err
			}
			t := newTable(c.App.Writer, "Benchmark")
			t.AppendRow(table.Row{"Hash function", rep.Hash})
			t.AppendRow(table.Row{"Records", rep.Leaves})
			t.AppendRow(table.Row{"Record size", formatBytes(rep.RecordSize)})
			t.AppendRow(table.Row{"Root", rep.Root.String()})
			t.AppendRow(table.Row{"Height", rep.Height})
			t.AppendRow(table.Row{"Inclusion proof", formatBytes(rep.InclusionSize)})
			t.AppendRow(table.Row{"Exclusion proof", formatBytes(rep.ExclusionSize)})
			t.AppendRow(table.Row{"Inclusion valid", rep.InclusionValid})
			t.AppendRow(table.Row{"Exclusion valid", rep.ExclusionValid})
			t.AppendSeparator()
			for _, p := range rep.Phases {
				t.AppendRow(table.Row{p.Name, p.Duration})
			}
			t.AppendFooter(table.Row{"Total", rep.Total()})
			t.Render()
			return nil
		},
	}
}

func runBench(e *env, cfg *bench.Config) (*bench.Report, error) {
	// metrics are collected but not exported by the command line tool
	return bench.Run(*cfg, e.log, metrics.New(nil))
}
