package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/store"
	"github.com/iotaledger/hive.go/core/kvstore/mapdb"
)

// snapshot is the store kept in memory and dumped to the file
type snapshot struct {
	*store.Store
	fname string
	kvs   *store.HiveKVStoreAdaptor
}

func openSnapshot(e *env, fname string, mustExist bool) (*snapshot, error) {
	kvs := store.NewHiveKVStoreAdaptor(mapdb.NewMapDB(), nil)
	_, err := os.Stat(fname)
	switch {
	case err == nil:
		n, err := common.UnDumpFromFile(kvs, fname)
		if err != nil {
			return nil, fmt.Errorf("reading snapshot '%s': %w", fname, err)
		}
		e.log.Debug("snapshot loaded", "file", fname, "bytes", n)
	case errors.Is(err, os.ErrNotExist) && !mustExist:
	default:
		return nil, err
	}
	return &snapshot{
		Store: store.New(kvs, e.log),
		fname: fname,
		kvs:   kvs,
	}, nil
}

func (s *snapshot) persist() error {
	_, err := common.DumpToFile(s.kvs, s.fname)
	return err
}

// resolveRoot parses the root. Empty string is fine if the snapshot contains only one leaf set
func (s *snapshot) resolveRoot(str string) (common.Digest, error) {
	if str != "" {
		return parseDigest(str)
	}
	roots := s.Roots()
	if len(roots) != 1 {
		return common.Digest{}, fmt.Errorf("snapshot contains %d leaf sets, specify the root", len(roots))
	}
	return roots[0], nil
}
