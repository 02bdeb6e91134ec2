package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/config"
	"github.com/iotaledger/accumulator.go/hashing"
	"github.com/iotaledger/accumulator.go/proof"
	"github.com/iotaledger/accumulator.go/signing"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T) *env {
	return &env{cfg: config.Default(), log: slogt.New(t)}
}

func run(t *testing.T, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{AppName}, args...))
	t.Logf("%s\n%s%s", strings.Join(args, " "), errOut.String(), out.String())
	return out.String(), err
}

func TestBuildProveVerify(t *testing.T) {
	dir := t.TempDir()
	recordsFile := filepath.Join(dir, "records.bin")
	snapFile := filepath.Join(dir, "snapshot.bin")
	proofFile := filepath.Join(dir, "proof.bin")

	_, err := run(t, "gen", "--n", "100", "--size", "16", "--seed", "5", recordsFile)
	require.NoError(t, err)

	_, err = run(t, "--hash", hashing.NameSM3, "--log-level", "debug", "build", recordsFile, snapFile)
	require.NoError(t, err)

	records, err := readRecordsFile(recordsFile)
	require.NoError(t, err)
	require.Len(t, records, 100)
	require.Equal(t, common.RandomRecords(5, 100, 16), records)

	// the root is found in the snapshot, no --root needed
	_, err = run(t, "prove", "-s", snapFile, "--record-hex", hex.EncodeToString(records[17]), "-o", proofFile)
	require.NoError(t, err)

	data, err := os.ReadFile(proofFile)
	require.NoError(t, err)
	p, err := proof.EnvelopeFromBytes(data)
	require.NoError(t, err)
	require.Equal(t, proof.KindInclusion, p.Kind)
	require.Equal(t, hashing.NameSM3, p.Hash)

	root := rootOf(t, snapFile)
	_, err = run(t, "verify", "--root", root.String(), proofFile)
	require.NoError(t, err)
	_, err = run(t, "verify", "--root", root.String(), "--leaves", "100", proofFile)
	require.NoError(t, err)
	_, err = run(t, "verify", "--root", root.String(), "--leaves", "50", proofFile)
	require.Error(t, err)
	_, err = run(t, "verify", proofFile)
	require.Error(t, err)

	// multihash form of the root is accepted too
	_, err = run(t, "verify", "--root", hashing.MultihashString(hashing.SM3{}, root), proofFile)
	require.NoError(t, err)

	wrong := root
	wrong[0] ^= 0xff
	_, err = run(t, "verify", "--root", wrong.String(), proofFile)
	require.Error(t, err)

	// absent record inside of the leaf range
	absent := findAbsentRecord(t, snapFile)
	out, err := run(t, "prove", "-s", snapFile, "--root", root.String(), "--record", absent)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	data, err = hex.DecodeString(lines[0])
	require.NoError(t, err)
	p, err = proof.EnvelopeFromBytes(data)
	require.NoError(t, err)
	require.Equal(t, proof.KindExclusion, p.Kind)
	require.NoError(t, p.Validate(root))

	_, err = run(t, "prove", "-s", snapFile)
	require.Error(t, err)
	_, err = run(t, "prove", "-s", filepath.Join(dir, "missing.bin"), "--record", "x")
	require.Error(t, err)
}

func rootOf(t *testing.T, snapFile string) common.Digest {
	snap, err := openSnapshot(testEnv(t), snapFile, true)
	require.NoError(t, err)
	root, err := snap.resolveRoot("")
	require.NoError(t, err)
	return root
}

func findAbsentRecord(t *testing.T, snapFile string) string {
	snap, err := openSnapshot(testEnv(t), snapFile, true)
	require.NoError(t, err)
	root, err := snap.resolveRoot("")
	require.NoError(t, err)
	tr, err := snap.Load(root)
	require.NoError(t, err)
	for i := 0; ; i++ {
		rec := "absent" + string(rune('a'+i%26)) + strings.Repeat("x", i/26)
		d := tr.Hasher().Sum([]byte(rec))
		pred, succ := tr.LocateBracket(d)
		if pred >= 0 && succ >= 0 {
			return rec
		}
	}
}

func TestKeygenSignVerifyRoot(t *testing.T) {
	dir := t.TempDir()
	recordsFile := filepath.Join(dir, "records.bin")
	snapFile := filepath.Join(dir, "snapshot.bin")
	seedFile := filepath.Join(dir, "seed.txt")
	keyFile := filepath.Join(dir, "key")
	srFile := filepath.Join(dir, "root.signed")

	seed := "a long enough secret seed phrase"
	require.NoError(t, os.WriteFile(seedFile, []byte(seed+"\n"), 0o600))

	_, err := run(t, "gen", "--n", "20", recordsFile)
	require.NoError(t, err)
	_, err = run(t, "build", recordsFile, snapFile)
	require.NoError(t, err)

	_, err = run(t, "keygen", "--seed-file", seedFile, keyFile)
	require.NoError(t, err)
	pubHex, err := os.ReadFile(keyFile + ".pub")
	require.NoError(t, err)
	signer, err := signing.NewSigner([]byte(seed))
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(signer.PublicKeyBytes()), strings.TrimSpace(string(pubHex)))

	_, err = run(t, "sign", "-s", snapFile, "-k", keyFile, "-o", srFile)
	require.NoError(t, err)

	out, err := run(t, "verify-root", "--pub", strings.TrimSpace(string(pubHex)), srFile)
	require.NoError(t, err)
	require.Contains(t, out, "VALID")

	other := signing.NewRandomSigner()
	_, err = run(t, "verify-root", "--pub", hex.EncodeToString(other.PublicKeyBytes()), srFile)
	require.Error(t, err)

	// proof checked against the signed root
	records, err := readRecordsFile(recordsFile)
	require.NoError(t, err)
	proofFile := filepath.Join(dir, "proof.bin")
	_, err = run(t, "prove", "-s", snapFile, "--record-hex", hex.EncodeToString(records[3]), "-o", proofFile)
	require.NoError(t, err)
	out, err = run(t, "verify", "--signed-root", srFile, "--pub", strings.TrimSpace(string(pubHex)), proofFile)
	require.NoError(t, err)
	require.Contains(t, out, "VALID")
	_, err = run(t, "verify", "--signed-root", srFile, "--pub", hex.EncodeToString(other.PublicKeyBytes()), proofFile)
	require.Error(t, err)

	// signed root is kept in the snapshot
	snap, err := openSnapshot(testEnv(t), snapFile, true)
	require.NoError(t, err)
	root, err := snap.resolveRoot("")
	require.NoError(t, err)
	sr, err := snap.SignedRoot(root)
	require.NoError(t, err)
	require.NoError(t, signing.Verify(signer.PublicKey(), sr))

	short := filepath.Join(dir, "short.txt")
	require.NoError(t, os.WriteFile(short, []byte("short"), 0o600))
	_, err = run(t, "keygen", "--seed-file", short, keyFile)
	require.Error(t, err)
}

func TestBenchHashesConfig(t *testing.T) {
	out, err := run(t, "bench", "--n", "300", "--size", "8")
	require.NoError(t, err)
	require.Contains(t, out, "Exclusion valid")

	out, err = run(t, "hashes")
	require.NoError(t, err)
	for _, name := range hashing.Names() {
		require.Contains(t, out, name)
	}

	cfgFile := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("hash: blake3\nbench:\n  leaves: 10\n"), 0o600))
	out, err = run(t, "-c", cfgFile, "--log-format", "json", "config")
	require.NoError(t, err)
	require.Contains(t, out, "hash: blake3")
	require.Contains(t, out, "leaves: 10")
	require.Contains(t, out, "format: json")

	_, err = run(t, "--hash", "md5", "hashes")
	require.Error(t, err)
}
