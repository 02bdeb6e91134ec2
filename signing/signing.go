// Package signing attests committed roots with Schnorr signatures over Ed25519.
// A signed root binds the root digest, the number of leaves and the hash function
package signing

import (
	"bytes"
	"fmt"
	"io"

	"github.com/iotaledger/accumulator.go/accumulator"
	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/proof"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/group/edwards25519"
	"go.dedis.ch/kyber/v3/sign/schnorr"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

// MinSeedLength is the minimum length of the secret seed a key is derived from
const MinSeedLength = 20

const domainTag = "accumulator.go/signed-root/v1"

var suite = edwards25519.NewBlakeSHA256Ed25519()

var (
	ErrSeedTooShort     = xerrors.Errorf("seed must be at least %d bytes long", MinSeedLength)
	ErrInvalidSignature = xerrors.New("invalid root signature")
)

type Signer struct {
	private kyber.Scalar
	public  kyber.Point
}

// NewSigner derives the key pair deterministically from the secret seed
func NewSigner(seed []byte) (*Signer, error) {
	if len(seed) < MinSeedLength {
		return nil, ErrSeedTooShort
	}
	h := blake2b.Sum256(seed)
	private := suite.Scalar().Pick(suite.XOF(h[:]))
	h = [32]byte{} // destroy secret
	return newSigner(private), nil
}

// NewRandomSigner generates a key pair from the system randomness
func NewRandomSigner() *Signer {
	return newSigner(suite.Scalar().Pick(suite.RandomStream()))
}

func SignerFromPrivateKeyBytes(data []byte) (*Signer, error) {
	if len(data) != suite.ScalarLen() {
		return nil, fmt.Errorf("wrong private key: expected %d bytes, got %d", suite.ScalarLen(), len(data))
	}
	private := suite.Scalar()
	if err := private.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("wrong private key: %w", err)
	}
	return newSigner(private), nil
}

func newSigner(private kyber.Scalar) *Signer {
	return &Signer{
		private: private,
		public:  suite.Point().Mul(private, nil),
	}
}

func (s *Signer) PublicKey() kyber.Point {
	return s.public
}

func (s *Signer) PublicKeyBytes() []byte {
	ret, err := s.public.MarshalBinary()
	common.AssertNoError(err)
	return ret
}

func (s *Signer) PrivateKeyBytes() []byte {
	ret, err := s.private.MarshalBinary()
	common.AssertNoError(err)
	return ret
}

func PublicKeyFromBytes(data []byte) (kyber.Point, error) {
	if len(data) != suite.PointLen() {
		return nil, fmt.Errorf("wrong public key: expected %d bytes, got %d", suite.PointLen(), len(data))
	}
	ret := suite.Point()
	if err := ret.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("wrong public key: %w", err)
	}
	return ret, nil
}

// SignTree signs the root of the non-empty tree
func (s *Signer) SignTree(t *accumulator.Tree) (*SignedRoot, error) {
	root, ok := t.Root()
	if !ok {
		return nil, accumulator.ErrEmptyTree
	}
	return s.Sign(&SignedRoot{
		Root:      root,
		LeafCount: uint32(t.Len()),
		Hash:      t.Hasher().Name(),
	})
}

// Sign fills in the signature of sr and returns it
func (s *Signer) Sign(sr *SignedRoot) (*SignedRoot, error) {
	sig, err := schnorr.Sign(suite, s.private, sr.message())
	if err != nil {
		return nil, err
	}
	sr.Signature = sig
	return sr, nil
}

// Verify checks the signature of the root with the public key
func Verify(pub kyber.Point, sr *SignedRoot) error {
	if len(sr.Signature) == 0 {
		return fmt.Errorf("%w: not signed", ErrInvalidSignature)
	}
	if err := schnorr.Verify(suite, pub, sr.message(), sr.Signature); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// SignedRoot is the attestation of the committed leaf set
type SignedRoot struct {
	Root      common.Digest
	LeafCount uint32
	Hash      string
	Signature []byte
}

func (sr *SignedRoot) message() []byte {
	var buf bytes.Buffer
	buf.WriteString(domainTag)
	common.AssertNoError(sr.writeEssence(&buf))
	return buf.Bytes()
}

func (sr *SignedRoot) writeEssence(w io.Writer) error {
	if err := common.WriteBytes8(w, []byte(sr.Hash)); err != nil {
		return err
	}
	if err := common.WriteUint32(w, sr.LeafCount); err != nil {
		return err
	}
	return sr.Root.Write(w)
}

// ValidateProof checks the proof against the signed root. The signature must be verified separately
func (sr *SignedRoot) ValidateProof(p *proof.Envelope) error {
	if p.Hash != sr.Hash {
		return fmt.Errorf("%w: proof uses %s, root is committed with %s", proof.ErrInvalidProof, p.Hash, sr.Hash)
	}
	return p.ValidateInTree(sr.Root, int(sr.LeafCount))
}

func (sr *SignedRoot) String() string {
	return fmt.Sprintf("root %s, %d leaves, %s", sr.Root, sr.LeafCount, sr.Hash)
}

func SignedRootFromBytes(data []byte) (*SignedRoot, error) {
	ret := &SignedRoot{}
	if err := common.ReadAllFrom(ret, data); err != nil {
		return nil, err
	}
	return ret, nil
}

func (sr *SignedRoot) Bytes() []byte {
	return common.MustBytes(sr)
}

func (sr *SignedRoot) Write(w io.Writer) error {
	if err := sr.writeEssence(w); err != nil {
		return err
	}
	return common.WriteBytes16(w, sr.Signature)
}

func (sr *SignedRoot) Read(r io.Reader) error {
	name, err := common.ReadBytes8(r)
	if err != nil {
		return err
	}
	sr.Hash = string(name)
	if err = common.ReadUint32(r, &sr.LeafCount); err != nil {
		return err
	}
	if err = sr.Root.Read(r); err != nil {
		return err
	}
	if sr.Signature, err = common.ReadBytes16(r); err != nil {
		return err
	}
	return nil
}
