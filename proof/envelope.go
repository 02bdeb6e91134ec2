package proof

import (
	"fmt"
	"io"

	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/hashing"
)

// Kind tells which of the proofs the Envelope carries
type Kind byte

const (
	KindInclusion = Kind(iota + 1)
	KindExclusion
)

func (k Kind) String() string {
	switch k {
	case KindInclusion:
		return "inclusion"
	case KindExclusion:
		return "exclusion"
	}
	return fmt.Sprintf("kind(%d)", byte(k))
}

// Envelope is a self-contained answer to the question whether Target is committed to the root.
// It names the hash function, so it can be validated knowing only the root.
// Knowing also the number of leaves, use ValidateInTree
type Envelope struct {
	Kind      Kind
	Hash      string
	Target    common.Digest
	Inclusion InclusionProof
	Exclusion *ExclusionProof
}

func NewInclusionEnvelope(h hashing.Hasher, target common.Digest, p InclusionProof) *Envelope {
	return &Envelope{
		Kind:      KindInclusion,
		Hash:      h.Name(),
		Target:    target,
		Inclusion: p,
	}
}

func NewExclusionEnvelope(h hashing.Hasher, target common.Digest, p *ExclusionProof) *Envelope {
	return &Envelope{
		Kind:      KindExclusion,
		Hash:      h.Name(),
		Target:    target,
		Exclusion: p,
	}
}

// Validate checks the proof against the root with the hash function named in the envelope
func (e *Envelope) Validate(root common.Digest) error {
	h, err := hashing.ByName(e.Hash)
	if err != nil {
		return err
	}
	switch e.Kind {
	case KindInclusion:
		return ValidateInclusion(h, e.Target, root, e.Inclusion)
	case KindExclusion:
		return ValidateExclusion(h, e.Target, root, e.Exclusion)
	}
	return fmt.Errorf("%w: unknown proof kind %s", ErrInvalidProof, e.Kind)
}

func (e *Envelope) Verify(root common.Digest) bool {
	return e.Validate(root) == nil
}

// ValidateInTree is Validate which also requires the paths to end at the leaves of the tree with leafCount leaves
func (e *Envelope) ValidateInTree(root common.Digest, leafCount int) error {
	h, err := hashing.ByName(e.Hash)
	if err != nil {
		return err
	}
	switch e.Kind {
	case KindInclusion:
		return ValidateInclusionInTree(h, e.Target, root, leafCount, e.Inclusion)
	case KindExclusion:
		return ValidateExclusionInTree(h, e.Target, root, leafCount, e.Exclusion)
	}
	return fmt.Errorf("%w: unknown proof kind %s", ErrInvalidProof, e.Kind)
}

func (e *Envelope) VerifyInTree(root common.Digest, leafCount int) bool {
	return e.ValidateInTree(root, leafCount) == nil
}

func (e *Envelope) String() string {
	return fmt.Sprintf("%s proof of %s (%s)", e.Kind, e.Target.Short(), e.Hash)
}

func EnvelopeFromBytes(data []byte) (*Envelope, error) {
	ret := &Envelope{}
	if err := common.ReadAllFrom(ret, data); err != nil {
		return nil, err
	}
	return ret, nil
}

func (e *Envelope) Bytes() []byte {
	return common.MustBytes(e)
}

func (e *Envelope) Write(w io.Writer) error {
	if err := common.WriteByte(w, byte(e.Kind)); err != nil {
		return err
	}
	if err := common.WriteBytes8(w, []byte(e.Hash)); err != nil {
		return err
	}
	if err := e.Target.Write(w); err != nil {
		return err
	}
	switch e.Kind {
	case KindInclusion:
		return e.Inclusion.Write(w)
	case KindExclusion:
		if e.Exclusion == nil {
			return fmt.Errorf("%w: exclusion envelope without proof", ErrWrongEncoding)
		}
		return e.Exclusion.Write(w)
	}
	return fmt.Errorf("%w: unknown proof kind %s", ErrWrongEncoding, e.Kind)
}

func (e *Envelope) Read(r io.Reader) error {
	k, err := common.ReadByte(r)
	if err != nil {
		return err
	}
	name, err := common.ReadBytes8(r)
	if err != nil {
		return err
	}
	var target common.Digest
	if err = target.Read(r); err != nil {
		return err
	}
	ret := Envelope{Kind: Kind(k), Hash: string(name), Target: target}
	switch ret.Kind {
	case KindInclusion:
		err = ret.Inclusion.Read(r)
	case KindExclusion:
		ret.Exclusion = &ExclusionProof{}
		err = ret.Exclusion.Read(r)
	default:
		err = fmt.Errorf("%w: unknown proof kind %s", ErrWrongEncoding, ret.Kind)
	}
	if err != nil {
		return err
	}
	*e = ret
	return nil
}
