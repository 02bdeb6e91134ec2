// Package store persists committed leaf sets and their signed roots in a key/value store.
// A leaf set is keyed by its root, so a tree can be rebuilt knowing only the root
package store

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/iotaledger/accumulator.go/accumulator"
	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/hashing"
	"github.com/iotaledger/accumulator.go/signing"
	"golang.org/x/xerrors"
)

// partitions of the key space
const (
	partitionHeader = byte('h')
	partitionLeaves = byte('l')
	partitionSigned = byte('s')
)

var (
	ErrNotFound  = xerrors.New("root not found in the store")
	ErrCorrupted = xerrors.New("stored leaf set is corrupted")
)

type Store struct {
	kvs common.KVStore
	log *slog.Logger
}

func New(kvs common.KVStore, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{kvs: kvs, log: log}
}

// header is stored under the root: the hash function and the number of leaves
type header struct {
	hash      string
	numLeaves uint32
}

func (h *header) Write(w io.Writer) error {
	if err := common.WriteBytes8(w, []byte(h.hash)); err != nil {
		return err
	}
	return common.WriteUint32(w, h.numLeaves)
}

func (h *header) Read(r io.Reader) error {
	name, err := common.ReadBytes8(r)
	if err != nil {
		return err
	}
	h.hash = string(name)
	return common.ReadUint32(r, &h.numLeaves)
}

func leafKey(root common.Digest, i int) []byte {
	return common.Concat(root, common.Uint32To4Bytes(uint32(i)))
}

// batch returns batched writer if the store supports it
func (s *Store) batch() common.KVBatchedWriter {
	if b, ok := s.kvs.(common.BatchedUpdatable); ok {
		return b.BatchedWriter()
	}
	return directWriter{s.kvs}
}

type directWriter struct {
	common.KVWriter
}

func (directWriter) Commit() error { return nil }

// Save stores leaves of the tree under its root. Saving the same root again is a no-op
func (s *Store) Save(t *accumulator.Tree) (common.Digest, error) {
	root, ok := t.Root()
	if !ok {
		return common.Digest{}, accumulator.ErrEmptyTree
	}
	if s.Has(root) {
		s.log.Debug("leaf set already stored", "root", root.String())
		return root, nil
	}
	b := s.batch()
	leaves := common.MakeWriterPartition(b, partitionLeaves)
	for i := 0; i < t.Len(); i++ {
		leaves.Set(leafKey(root, i), t.Leaf(i).Bytes())
	}
	// header goes last, it marks the leaf set complete
	hdr := &header{hash: t.Hasher().Name(), numLeaves: uint32(t.Len())}
	common.MakeWriterPartition(b, partitionHeader).Set(root[:], common.MustBytes(hdr))
	if err := b.Commit(); err != nil {
		return common.Digest{}, fmt.Errorf("saving leaf set %s: %w", root, err)
	}
	s.log.Info("saved leaf set", "root", root.String(), "leaves", t.Len(), "hash", hdr.hash)
	return root, nil
}

func (s *Store) Has(root common.Digest) bool {
	return common.MakeReaderPartition(s.kvs, partitionHeader).Has(root[:])
}

// Load rebuilds the tree stored under the root and checks it commits to the same root
func (s *Store) Load(root common.Digest, opts ...accumulator.Option) (*accumulator.Tree, error) {
	data := common.MakeReaderPartition(s.kvs, partitionHeader).Get(root[:])
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
	}
	var hdr header
	if err := common.ReadAllFrom(&hdr, data); err != nil {
		return nil, fmt.Errorf("%w: header of %s: %v", ErrCorrupted, root, err)
	}
	h, err := hashing.ByName(hdr.hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if hdr.numLeaves == 0 || hdr.numLeaves > accumulator.MaxLeaves {
		return nil, fmt.Errorf("%w: header of %s: %d leaves", ErrCorrupted, root, hdr.numLeaves)
	}
	n, err := s.countLeaves(root, hdr.numLeaves)
	if err != nil {
		return nil, fmt.Errorf("%w: leaves of %s: %v", ErrCorrupted, root, err)
	}
	if n != int(hdr.numLeaves) {
		return nil, fmt.Errorf("%w: %d leaves of %s stored, header says %d", ErrCorrupted, n, root, hdr.numLeaves)
	}
	part := common.MakeReaderPartition(s.kvs, partitionLeaves)
	leaves := make([]common.Digest, hdr.numLeaves)
	for i := range leaves {
		if leaves[i], err = common.DigestFromBytes(part.Get(leafKey(root, i))); err != nil {
			return nil, fmt.Errorf("%w: leaf #%d of %s: %v", ErrCorrupted, i, root, err)
		}
	}
	tr := accumulator.BuildFromDigests(leaves, append(opts, accumulator.WithHasher(h))...)
	if loaded, _ := tr.Root(); loaded != root {
		return nil, fmt.Errorf("%w: leaves of %s commit to %s", ErrCorrupted, root, loaded)
	}
	s.log.Debug("loaded leaf set", "root", root.String(), "leaves", tr.Len())
	return tr, nil
}

// countLeaves counts the leaf keys stored under the root. Every key must carry an index below numLeaves
func (s *Store) countLeaves(root common.Digest, numLeaves uint32) (int, error) {
	var err error
	n := 0
	common.MakePrefixIterator(s.kvs, common.Concat(partitionLeaves, root[:])).Iterate(func(k, _ []byte) bool {
		var idx uint32
		if idx, err = common.Uint32From4Bytes(k); err != nil {
			return false
		}
		if idx >= numLeaves {
			err = fmt.Errorf("leaf index %d out of %d", idx, numLeaves)
			return false
		}
		n++
		return true
	})
	return n, err
}

// Roots returns roots of all stored leaf sets in no particular order
func (s *Store) Roots() []common.Digest {
	ret := make([]common.Digest, 0)
	common.MakePrefixIterator(s.kvs, []byte{partitionHeader}).Iterate(func(k, _ []byte) bool {
		if d, err := common.DigestFromBytes(k); err == nil {
			ret = append(ret, d)
		}
		return true
	})
	return ret
}

// Delete removes the leaf set and its signed root. Deleting absent root is a no-op
func (s *Store) Delete(root common.Digest) error {
	data := common.MakeReaderPartition(s.kvs, partitionHeader).Get(root[:])
	if data == nil {
		return nil
	}
	var hdr header
	if err := common.ReadAllFrom(&hdr, data); err != nil {
		return fmt.Errorf("%w: header of %s: %v", ErrCorrupted, root, err)
	}
	b := s.batch()
	common.MakeWriterPartition(b, partitionHeader).Set(root[:], nil)
	common.MakeWriterPartition(b, partitionSigned).Set(root[:], nil)
	leaves := common.MakeWriterPartition(b, partitionLeaves)
	for i := 0; i < int(hdr.numLeaves); i++ {
		leaves.Set(leafKey(root, i), nil)
	}
	return b.Commit()
}

// SaveSignedRoot stores the attestation next to the leaf set it signs
func (s *Store) SaveSignedRoot(sr *signing.SignedRoot) error {
	if !s.Has(sr.Root) {
		return fmt.Errorf("%w: %s", ErrNotFound, sr.Root)
	}
	b := s.batch()
	common.MakeWriterPartition(b, partitionSigned).Set(sr.Root[:], sr.Bytes())
	return b.Commit()
}

func (s *Store) SignedRoot(root common.Digest) (*signing.SignedRoot, error) {
	data := common.MakeReaderPartition(s.kvs, partitionSigned).Get(root[:])
	if data == nil {
		return nil, fmt.Errorf("%w: no signed root %s", ErrNotFound, root)
	}
	return signing.SignedRootFromBytes(data)
}
