package accumulator

import (
	"io"
	"log/slog"
	"runtime"

	"github.com/iotaledger/accumulator.go/hashing"
	"github.com/iotaledger/accumulator.go/metrics"
)

type options struct {
	hasher      hashing.Hasher
	log         *slog.Logger
	metrics     *metrics.Metrics
	concurrency int
}

// Option configures the tree being built
type Option func(*options)

func WithHasher(h hashing.Hasher) Option {
	return func(o *options) {
		o.hasher = h
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithConcurrency sets number of goroutines hashing the records. 1 means hashing in the calling goroutine
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

func makeOptions(opts []Option) *options {
	ret := &options{
		hasher:      hashing.Default,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.hasher == nil {
		ret.hasher = hashing.Default
	}
	if ret.log == nil {
		ret.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return ret
}
