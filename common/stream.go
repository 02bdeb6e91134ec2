package common

import (
	"errors"
	"io"
	"math"
	"math/rand"
	"os"
	"time"
)

// Interfaces and implementations for writing/reading persistent streams of records

// RecordWriter represents an interface to write a sequence of opaque records
type RecordWriter interface {
	// Write writes one record
	Write(record []byte) error
	// Stats return num records and num bytes so far
	Stats() (int, int)
}

// RecordIterator is an interface to iterate a stream of records
type RecordIterator interface {
	Iterate(func(record []byte) bool) error
}

// BinaryStreamWriter writes stream of records in binary format: 4 bytes of length, then the record
type BinaryStreamWriter struct {
	w           io.Writer
	recordCount int
	byteCount   int
}

// BinaryStreamWriter implements RecordWriter interface
var _ RecordWriter = &BinaryStreamWriter{}

func NewBinaryStreamWriter(w io.Writer) *BinaryStreamWriter {
	return &BinaryStreamWriter{w: w}
}

func (b *BinaryStreamWriter) Write(record []byte) error {
	if err := WriteBytes32(b.w, record); err != nil {
		return err
	}
	b.byteCount += len(record) + 4
	b.recordCount++
	return nil
}

func (b *BinaryStreamWriter) Stats() (int, int) {
	return b.recordCount, b.byteCount
}

// BinaryStreamIterator deserializes stream of records from io.Reader
type BinaryStreamIterator struct {
	r io.Reader
}

var _ RecordIterator = &BinaryStreamIterator{}

func NewBinaryStreamIterator(r io.Reader) *BinaryStreamIterator {
	return &BinaryStreamIterator{r: r}
}

func (b *BinaryStreamIterator) Iterate(fun func(record []byte) bool) error {
	for {
		rec, err := ReadBytes32(b.r)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !fun(rec) {
			return nil
		}
	}
}

// BinaryStreamFileWriter is a BinaryStreamWriter with the file as a backend
type BinaryStreamFileWriter struct {
	*BinaryStreamWriter
	File *os.File
}

var _ RecordWriter = &BinaryStreamFileWriter{}

// CreateRecordStreamFile create a new BinaryStreamFileWriter
func CreateRecordStreamFile(fname string) (*BinaryStreamFileWriter, error) {
	file, err := os.Create(fname)
	if err != nil {
		return nil, err
	}
	return &BinaryStreamFileWriter{
		BinaryStreamWriter: NewBinaryStreamWriter(file),
		File:               file,
	}, nil
}

func (w *BinaryStreamFileWriter) Close() error {
	return w.File.Close()
}

// BinaryStreamFileIterator is a BinaryStreamIterator with the file as a backend
type BinaryStreamFileIterator struct {
	*BinaryStreamIterator
	File *os.File
}

var _ RecordIterator = &BinaryStreamFileIterator{}

// OpenRecordStreamFile opens existing file with the record stream for reading
func OpenRecordStreamFile(fname string) (*BinaryStreamFileIterator, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	return &BinaryStreamFileIterator{
		BinaryStreamIterator: NewBinaryStreamIterator(file),
		File:                 file,
	}, nil
}

func (it *BinaryStreamFileIterator) Close() error {
	return it.File.Close()
}

// CollectRecords reads the whole stream into memory
func CollectRecords(it RecordIterator) ([][]byte, error) {
	ret := make([][]byte, 0)
	err := it.Iterate(func(record []byte) bool {
		ret = append(ret, record)
		return true
	})
	return ret, err
}

// RandRecordIterator is a stream of random records with the given parameters.
// Used for testing and benchmarking
type RandRecordIterator struct {
	rnd   *rand.Rand
	par   RandRecordParams
	count int
}

var _ RecordIterator = &RandRecordIterator{}

// RandRecordParams represents parameters of the RandRecordIterator
type RandRecordParams struct {
	// Seed for deterministic randomization
	Seed int64
	// NumRecords maximum number of records to generate. 0 means infinite
	NumRecords int
	// RecordSize is the length of every record. If 0, length is random up to MaxRecordSize
	RecordSize int
	// MaxRecordSize maximum length of the record when RecordSize == 0
	MaxRecordSize int
}

func NewRandRecordIterator(p ...RandRecordParams) *RandRecordIterator {
	ret := &RandRecordIterator{
		par: RandRecordParams{
			Seed:          time.Now().UnixNano(),
			NumRecords:    0, // infinite
			RecordSize:    64,
			MaxRecordSize: 128,
		},
	}
	if len(p) > 0 {
		ret.par = p[0]
	}
	Assert(ret.par.RecordSize > 0 || ret.par.MaxRecordSize > 1, "RandRecordIterator: wrong record size parameters")
	ret.rnd = rand.New(rand.NewSource(ret.par.Seed))
	return ret
}

func (r *RandRecordIterator) Iterate(fun func(record []byte) bool) error {
	limit := r.par.NumRecords
	if limit <= 0 {
		limit = math.MaxInt
	}
	for r.count < limit {
		sz := r.par.RecordSize
		if sz <= 0 {
			sz = r.rnd.Intn(r.par.MaxRecordSize-1) + 1
		}
		rec := make([]byte, sz)
		r.rnd.Read(rec)
		r.count++
		if !fun(rec) {
			return nil
		}
	}
	return nil
}

// RandomRecords is a shortcut which generates n records of the given size deterministically from the seed
func RandomRecords(seed int64, n, size int) [][]byte {
	if n <= 0 {
		return [][]byte{}
	}
	ret, err := CollectRecords(NewRandRecordIterator(RandRecordParams{
		Seed:       seed,
		NumRecords: n,
		RecordSize: size,
	}))
	AssertNoError(err)
	return ret
}
