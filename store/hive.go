package store

import (
	"errors"

	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/hive.go/core/kvstore"
)

// HiveKVStoreAdaptor maps a partition of the hive.go KVStore to common.KVStore
type HiveKVStoreAdaptor struct {
	kvs    kvstore.KVStore
	prefix []byte
}

var (
	_ common.KVStore          = &HiveKVStoreAdaptor{}
	_ common.BatchedUpdatable = &HiveKVStoreAdaptor{}
	_ common.Traversable      = &HiveKVStoreAdaptor{}
)

// NewHiveKVStoreAdaptor creates a new KVStore as a partition of hive.go KVStore
func NewHiveKVStoreAdaptor(kvs kvstore.KVStore, prefix []byte) *HiveKVStoreAdaptor {
	return &HiveKVStoreAdaptor{kvs: kvs, prefix: prefix}
}

func mustNoErr(err error) {
	if err != nil {
		panic(err)
	}
}

func makeKey(prefix, k []byte) []byte {
	if len(prefix) == 0 {
		return k
	}
	return common.Concat(prefix, k)
}

func (kvs *HiveKVStoreAdaptor) Get(key []byte) []byte {
	v, err := kvs.kvs.Get(makeKey(kvs.prefix, key))
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil
	}
	mustNoErr(err)
	return v
}

func (kvs *HiveKVStoreAdaptor) Has(key []byte) bool {
	v, err := kvs.kvs.Has(makeKey(kvs.prefix, key))
	mustNoErr(err)
	return v
}

func (kvs *HiveKVStoreAdaptor) Set(key, value []byte) {
	var err error
	if len(value) == 0 {
		err = kvs.kvs.Delete(makeKey(kvs.prefix, key))
	} else {
		err = kvs.kvs.Set(makeKey(kvs.prefix, key), value)
	}
	mustNoErr(err)
}

func (kvs *HiveKVStoreAdaptor) Iterate(fun func(k []byte, v []byte) bool) {
	err := kvs.kvs.Iterate(kvs.prefix, func(key kvstore.Key, value kvstore.Value) bool {
		return fun(key[len(kvs.prefix):], value)
	})
	mustNoErr(err)
}

// Iterator iterates the sub-partition with the prefix
func (kvs *HiveKVStoreAdaptor) Iterator(prefix []byte) common.KVIterator {
	return NewHiveKVStoreAdaptor(kvs.kvs, makeKey(kvs.prefix, prefix))
}

// BatchedWriter collects mutations in the hive.go batch. They are applied atomically and flushed with Commit
func (kvs *HiveKVStoreAdaptor) BatchedWriter() common.KVBatchedWriter {
	batch, err := kvs.kvs.Batched()
	mustNoErr(err)
	return &batchWriter{
		kvs:    kvs.kvs,
		prefix: kvs.prefix,
		batch:  batch,
	}
}

// batchWriter implements KVBatchedWriter interface over the hive.go batch
type batchWriter struct {
	kvs    kvstore.KVStore
	prefix []byte
	batch  kvstore.BatchedMutations
}

func (b *batchWriter) Set(key, value []byte) {
	var err error
	if len(value) > 0 {
		err = b.batch.Set(makeKey(b.prefix, key), value)
	} else {
		err = b.batch.Delete(makeKey(b.prefix, key))
	}
	mustNoErr(err)
}

func (b *batchWriter) Commit() error {
	if err := b.batch.Commit(); err != nil {
		return err
	}
	return b.kvs.Flush()
}
