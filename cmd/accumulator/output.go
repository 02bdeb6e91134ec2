package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/hashing"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleColoredBright)
	t.SetTitle(title)
	return t
}

func formatBytes(bytes int) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// parseDigest accepts hex or base58 multihash
func parseDigest(s string) (common.Digest, error) {
	s = strings.TrimSpace(s)
	if d, err := common.DigestFromHex(s); err == nil {
		return d, nil
	}
	_, d, err := hashing.ParseMultihashString(s)
	if err != nil {
		return common.Digest{}, fmt.Errorf("'%s' is neither hex digest nor multihash", s)
	}
	return d, nil
}

func readHexFile(fname string) ([]byte, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(strings.TrimSpace(string(data)))
}

func writeHexFile(fname string, data []byte, perm os.FileMode) error {
	return os.WriteFile(fname, []byte(hex.EncodeToString(data)+"\n"), perm)
}
