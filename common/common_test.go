package common

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	t.Run("order", func(t *testing.T) {
		var d1, d2 Digest
		d2[DigestSize-1] = 1
		require.True(t, d1.Less(d2))
		require.False(t, d2.Less(d1))
		require.False(t, d1.Less(d1))
		require.EqualValues(t, -1, CompareDigests(d1, d2))
		require.EqualValues(t, 0, d1.Compare(d1))
		require.True(t, d1.IsZero())
		require.False(t, d2.IsZero())
	})
	t.Run("order is lexicographic", func(t *testing.T) {
		var d1, d2 Digest
		d1[0] = 1
		d2[1] = 0xff
		require.True(t, d2.Less(d1))
	})
	t.Run("hex", func(t *testing.T) {
		var d Digest
		for i := range d {
			d[i] = byte(i)
		}
		d1, err := DigestFromHex(d.String())
		require.NoError(t, err)
		require.EqualValues(t, d, d1)
		require.EqualValues(t, "00010203", d.Short())

		_, err = DigestFromHex("0102")
		require.Error(t, err)
		_, err = DigestFromHex("zz")
		require.Error(t, err)
	})
	t.Run("read write", func(t *testing.T) {
		d := MustDigestFromHex("ffeeddccbbaa99887766554433221100ffeeddccbbaa99887766554433221100")
		var d1 Digest
		require.NoError(t, ReadAllFrom(&d1, MustBytes(d)))
		require.True(t, d.Equal(d1))
		require.EqualValues(t, DigestSize, MustSize(d))

		err := ReadAllFrom(&d1, append(MustBytes(d), 0))
		require.ErrorIs(t, err, ErrNotAllBytesConsumed)
		err = d1.Read(bytes.NewReader(d[:10]))
		require.Error(t, err)
	})
}

func TestReadWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBytes8(&buf, []byte("abc")))
	require.NoError(t, WriteBytes16(&buf, []byte("defg")))
	require.NoError(t, WriteBytes32(&buf, nil))
	require.NoError(t, WriteUint64(&buf, 1<<40))

	b8, err := ReadBytes8(&buf)
	require.NoError(t, err)
	require.EqualValues(t, "abc", string(b8))
	b16, err := ReadBytes16(&buf)
	require.NoError(t, err)
	require.EqualValues(t, "defg", string(b16))
	b32, err := ReadBytes32(&buf)
	require.NoError(t, err)
	require.EqualValues(t, 0, len(b32))
	var u64 uint64
	require.NoError(t, ReadUint64(&buf, &u64))
	require.EqualValues(t, uint64(1<<40), u64)

	_, err = ReadByte(&buf)
	require.Error(t, err)
}

func TestPartitions(t *testing.T) {
	store := NewInMemoryKVStore()
	w1 := MakeWriterPartition(store, 'a')
	w2 := MakeWriterPartition(store, 'b')
	w1.Set([]byte("1"), []byte("one"))
	w2.Set([]byte("1"), []byte("uno"))
	w2.Set([]byte("2"), []byte("dos"))

	require.EqualValues(t, "one", string(MakeReaderPartition(store, 'a').Get([]byte("1"))))
	require.EqualValues(t, "uno", string(MakeReaderPartition(store, 'b').Get([]byte("1"))))
	require.False(t, MakeReaderPartition(store, 'a').Has([]byte("2")))
	require.EqualValues(t, 3, NumEntries(store))
	require.EqualValues(t, 2, NumEntries(MakePrefixIterator(store, []byte{'b'})))

	w2.Set([]byte("2"), nil)
	require.EqualValues(t, 1, NumEntries(MakePrefixIterator(store, []byte{'b'})))
}

func TestDumpUnDump(t *testing.T) {
	store := NewInMemoryKVStore()
	for _, rec := range RandomRecords(1, 100, 10) {
		store.Set(rec[:4], rec)
	}
	fname := filepath.Join(t.TempDir(), "dump.bin")
	n, err := DumpToFile(store, fname)
	require.NoError(t, err)
	require.True(t, n > 0)

	restored := NewInMemoryKVStore()
	n1, err := UnDumpFromFile(restored, fname)
	require.NoError(t, err)
	require.EqualValues(t, n, n1)
	store.Iterate(func(k, v []byte) bool {
		require.EqualValues(t, v, restored.Get(k))
		return true
	})
}

func TestRecordStream(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		r1 := RandomRecords(42, 10, 64)
		r2 := RandomRecords(42, 10, 64)
		require.EqualValues(t, r1, r2)
		require.EqualValues(t, 10, len(r1))
		for _, r := range r1 {
			require.EqualValues(t, 64, len(r))
		}
		require.EqualValues(t, 0, len(RandomRecords(42, 0, 64)))
	})
	t.Run("random size", func(t *testing.T) {
		recs, err := CollectRecords(NewRandRecordIterator(RandRecordParams{
			Seed:          1,
			NumRecords:    50,
			MaxRecordSize: 20,
		}))
		require.NoError(t, err)
		require.EqualValues(t, 50, len(recs))
		for _, r := range recs {
			require.True(t, len(r) >= 1 && len(r) < 20)
		}
	})
	t.Run("file", func(t *testing.T) {
		fname := filepath.Join(t.TempDir(), "records.bin")
		w, err := CreateRecordStreamFile(fname)
		require.NoError(t, err)
		recs := RandomRecords(7, 33, 16)
		for _, r := range recs {
			require.NoError(t, w.Write(r))
		}
		n, sz := w.Stats()
		require.EqualValues(t, 33, n)
		require.EqualValues(t, 33*(16+4), sz)
		require.NoError(t, w.Close())

		it, err := OpenRecordStreamFile(fname)
		require.NoError(t, err)
		defer func() { _ = it.Close() }()
		back, err := CollectRecords(it)
		require.NoError(t, err)
		require.EqualValues(t, recs, back)
	})
}
