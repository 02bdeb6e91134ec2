// Package bench measures building the tree over generated records and
// producing and verifying one proof of each kind
package bench

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/iotaledger/accumulator.go/accumulator"
	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/hashing"
	"github.com/iotaledger/accumulator.go/metrics"
	"github.com/iotaledger/accumulator.go/proof"
)

// maxAbsentAttempts limits search for a random record hashing into the leaf range
const maxAbsentAttempts = 1000

type Config struct {
	Leaves      int
	RecordSize  int
	Seed        int64
	Hash        string
	Concurrency int
}

func (c *Config) Validate() error {
	if c.Leaves < 2 {
		return fmt.Errorf("at least 2 leaves required to prove absence, got %d", c.Leaves)
	}
	if c.RecordSize <= 0 {
		return fmt.Errorf("record size must be positive, got %d", c.RecordSize)
	}
	_, err := hashing.ByName(c.Hash)
	return err
}

type Phase struct {
	Name     string
	Duration time.Duration
}

type Report struct {
	Config
	Root           common.Digest
	Height         int
	Nodes          int
	Phases         []Phase
	InclusionSize  int
	ExclusionSize  int
	InclusionValid bool
	ExclusionValid bool
}

func (r *Report) Total() time.Duration {
	var ret time.Duration
	for _, p := range r.Phases {
		ret += p.Duration
	}
	return ret
}

type runner struct {
	report  *Report
	log     *slog.Logger
	metrics *metrics.Metrics
}

func (r *runner) phase(name string, fun func() error) error {
	start := time.Now()
	err := fun()
	d := time.Since(start)
	r.report.Phases = append(r.report.Phases, Phase{Name: name, Duration: d})
	r.log.Info(name, "elapsed", d)
	return err
}

// Run generates records, builds the tree and times proving and verification of one
// present and one absent record
func Run(cfg Config, log *slog.Logger, m *metrics.Metrics) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := hashing.MustByName(cfg.Hash)
	r := &runner{
		report:  &Report{Config: cfg},
		log:     log,
		metrics: m,
	}
	var records [][]byte
	var tr *accumulator.Tree
	var root common.Digest

	_ = r.phase("generate records", func() error {
		records = common.RandomRecords(cfg.Seed, cfg.Leaves, cfg.RecordSize)
		return nil
	})
	_ = r.phase("build tree", func() error {
		tr = accumulator.Build(records,
			accumulator.WithHasher(h),
			accumulator.WithLogger(log),
			accumulator.WithMetrics(m),
			accumulator.WithConcurrency(cfg.Concurrency),
		)
		root = tr.MustRoot()
		return nil
	})
	r.report.Root = root
	r.report.Height = tr.Height()
	r.report.Nodes = tr.NumNodes()

	present := h.Sum(records[len(records)/2])
	var inclusion proof.InclusionProof
	err := r.phase("prove inclusion", func() (err error) {
		inclusion, err = tr.InclusionProof(present)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.report.InclusionSize = len(inclusion.Bytes())
	_ = r.phase("verify inclusion", func() error {
		start := time.Now()
		r.report.InclusionValid = proof.VerifyInclusionInTree(h, present, root, tr.Len(), inclusion)
		m.ObserveVerify(proof.KindInclusion.String(), r.report.InclusionValid, time.Since(start))
		return nil
	})

	absent, err := findAbsent(tr, cfg)
	if err != nil {
		return nil, err
	}
	var exclusion *proof.ExclusionProof
	err = r.phase("prove exclusion", func() (err error) {
		exclusion, err = tr.ExclusionProof(absent)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.report.ExclusionSize = len(exclusion.Bytes())
	_ = r.phase("verify exclusion", func() error {
		start := time.Now()
		r.report.ExclusionValid = proof.VerifyExclusionInTree(h, absent, root, tr.Len(), exclusion)
		m.ObserveVerify(proof.KindExclusion.String(), r.report.ExclusionValid, time.Since(start))
		return nil
	})
	log.Info("benchmark done",
		"leaves", cfg.Leaves,
		"root", root.String(),
		"inclusion", r.report.InclusionValid,
		"exclusion", r.report.ExclusionValid,
		"total", r.report.Total(),
	)
	return r.report, nil
}

// findAbsent generates a record which is not in the tree and whose hash is between the smallest
// and the greatest leaf
func findAbsent(tr *accumulator.Tree, cfg Config) (common.Digest, error) {
	it := common.NewRandRecordIterator(common.RandRecordParams{
		Seed:       cfg.Seed + 1,
		NumRecords: maxAbsentAttempts,
		RecordSize: cfg.RecordSize,
	})
	var ret common.Digest
	found := false
	err := it.Iterate(func(record []byte) bool {
		d := tr.Hasher().Sum(record)
		pred, succ := tr.LocateBracket(d)
		if pred >= 0 && succ >= 0 && tr.Leaf(pred) != d {
			ret, found = d, true
			return false
		}
		return true
	})
	if err != nil {
		return common.Digest{}, err
	}
	if !found {
		return common.Digest{}, fmt.Errorf("no absent record inside of the leaf range after %d attempts", maxAbsentAttempts)
	}
	return ret, nil
}
