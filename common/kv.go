package common

import "bytes"

//----------------------------------------------------------------------------
// generic abstraction interfaces of key/value storage

// KVReader is a key/value reader
type KVReader interface {
	// Get retrieves value by key. Returned nil means absence of the key
	Get(key []byte) []byte
	// Has checks presence of the key in the key/value store
	Has(key []byte) bool // for performance
}

// KVWriter is a key/value writer
type KVWriter interface {
	// Set writes new or updates existing key with the value.
	// value == nil means deletion of the key from the store
	Set(key, value []byte)
}

// KVIterator is an interface to iterate through a set of key/value pairs.
// Order of iteration is NON-DETERMINISTIC in general
type KVIterator interface {
	Iterate(func(k, v []byte) bool)
}

// KVBatchedWriter collects mutations in the buffer via Set-s to KVWriter and then flushes (applies) it atomically to DB with Commit
type KVBatchedWriter interface {
	KVWriter
	Commit() error
}

// KVStore is a compound interface
type KVStore interface {
	KVReader
	KVWriter
	KVIterator
}

// BatchedUpdatable is a KVStore equipped with the batched update capability
type BatchedUpdatable interface {
	BatchedWriter() KVBatchedWriter
}

// Traversable is an interface which provides with partial iterators
type Traversable interface {
	Iterator(prefix []byte) KVIterator
}

//----------------------------------------------------------------------------
// in memory KVStore implementation. Mostly used for testing and as a cache of dumped files

type inMemoryKVStore map[string][]byte

// NewInMemoryKVStore creates an empty map-backed KVStore
func NewInMemoryKVStore() KVStore {
	return make(inMemoryKVStore)
}

func (im inMemoryKVStore) Get(k []byte) []byte {
	return im[string(k)]
}

func (im inMemoryKVStore) Has(k []byte) bool {
	_, ok := im[string(k)]
	return ok
}

func (im inMemoryKVStore) Iterate(f func(k []byte, v []byte) bool) {
	for k, v := range im {
		if !f([]byte(k), v) {
			return
		}
	}
}

func (im inMemoryKVStore) Set(k, v []byte) {
	if len(v) != 0 {
		im[string(k)] = v
	} else {
		delete(im, string(k))
	}
}

//----------------------------------------------------------------------------
// partitions of the key space by one byte prefix

type readerPartition struct {
	prefix byte
	r      KVReader
}

func (p *readerPartition) Get(key []byte) []byte {
	return p.r.Get(Concat(p.prefix, key))
}

func (p *readerPartition) Has(key []byte) bool {
	return p.r.Has(Concat(p.prefix, key))
}

func MakeReaderPartition(r KVReader, prefix byte) KVReader {
	return &readerPartition{
		prefix: prefix,
		r:      r,
	}
}

type writerPartition struct {
	prefix byte
	w      KVWriter
}

func (w *writerPartition) Set(key, value []byte) {
	w.w.Set(Concat(w.prefix, key), value)
}

func MakeWriterPartition(w KVWriter, prefix byte) KVWriter {
	return &writerPartition{
		prefix: prefix,
		w:      w,
	}
}

type prefixIterator struct {
	prefix []byte
	it     KVIterator
}

// Iterate calls f only for keys with the prefix. The prefix is stripped from the key
func (p *prefixIterator) Iterate(f func(k, v []byte) bool) {
	p.it.Iterate(func(k, v []byte) bool {
		if !bytes.HasPrefix(k, p.prefix) {
			return true
		}
		return f(k[len(p.prefix):], v)
	})
}

// MakePrefixIterator filters the iterator by the key prefix. If the underlying store is
// Traversable, its own prefix iterator is used
func MakePrefixIterator(it KVIterator, prefix []byte) KVIterator {
	if tr, ok := it.(Traversable); ok {
		return tr.Iterator(prefix)
	}
	return &prefixIterator{
		prefix: prefix,
		it:     it,
	}
}
