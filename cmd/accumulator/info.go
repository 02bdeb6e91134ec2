package main

import (
	"fmt"

	"github.com/iotaledger/accumulator.go/hashing"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

func hashesCmd() *cli.Command {
	return &cli.Command{
		Name:  "hashes",
		Usage: "list supported hash functions",
		Action: func(c *cli.Context) error {
			t := newTable(c.App.Writer, "Hash functions")
			t.AppendHeader(table.Row{"Name", "Multihash code", "Default"})
			for _, h := range hashing.All() {
				t.AppendRow(table.Row{
					h.Name(),
					fmt.Sprintf("0x%x", h.MultihashCode()),
					lo.Ternary(h.Name() == hashing.Default.Name(), "*", ""),
				})
			}
			t.Render()
			return nil
		},
	}
}

func configCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "print effective configuration",
		Action: func(c *cli.Context) error {
			return e.cfg.Write(c.App.Writer)
		},
	}
}
