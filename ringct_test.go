package ringct_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	ringct "github.com/ccoin/ringct"
	"github.com/ccoin/ringct/pkg/curve"
	"github.com/ccoin/ringct/pkg/mlsag"
)

// ledger is a minimal test double standing in for a real chain's set of
// unspent outputs: a fixed map from compressed public key to the public
// commitment it owns. Decoys are created fresh and recorded in it.
type ledger struct {
	entries map[[curve.CompressedPointSize]byte]curve.Point
}

func newLedger() *ledger {
	return &ledger{entries: make(map[[curve.CompressedPointSize]byte]curve.Point)}
}

func (l *ledger) put(pk curve.Point, commitment curve.Point) {
	l.entries[pk.Bytes()] = commitment
}

func (l *ledger) lookup(pk curve.Point) (curve.Point, bool) {
	c, ok := l.entries[pk.Bytes()]
	return c, ok
}

// randomLedgerEntry adds a random decoy entry (arbitrary value) to the
// ledger and returns it.
func randomLedgerEntry(t *testing.T, l *ledger) mlsag.DecoyInput {
	t.Helper()
	pg := curve.DefaultPedersenGens()
	sk, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	blinding, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	pk2 := pg.Gb.ScalarMul(sk)
	commitment := ringct.RevealedCommitment{Value: 99, Blinding: blinding}.Commit(pg)
	l.put(pk2, commitment)
	return mlsag.DecoyInput{PublicKey: pk2, Commitment: commitment}
}

// ringCommitmentsFromLedger maps a signature's ring public keys to the
// ledger's public commitments, in ring order, as a caller must do
// externally by looking up each ring member's current on-chain commitment
// before calling Transaction.Verify.
func ringCommitmentsFromLedger(t *testing.T, l *ledger, sig ringct.MlsagSignature) []curve.Point {
	t.Helper()
	keys := sig.PublicKeys()
	out := make([]curve.Point, len(keys))
	for i, k := range keys {
		c, ok := l.lookup(k)
		if !ok {
			t.Fatalf("ring public key not found in ledger")
		}
		out[i] = c
	}
	return out
}

func publicCommitmentsPerRing(t *testing.T, l *ledger, tx ringct.Transaction) [][]curve.Point {
	t.Helper()
	out := make([][]curve.Point, len(tx.Mlsags))
	for i, sig := range tx.Mlsags {
		out[i] = ringCommitmentsFromLedger(t, l, sig)
	}
	return out
}

func newSingleInputMaterial(t *testing.T, l *ledger, amount ringct.Amount, recipient curve.Point) ringct.Material {
	t.Helper()
	pg := curve.DefaultPedersenGens()
	secretKey, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	blinding, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	truePublicKey := pg.Gb.ScalarMul(secretKey)
	trueCommitment := ringct.RevealedCommitment{Value: amount, Blinding: blinding}.Commit(pg)
	l.put(truePublicKey, trueCommitment)

	decoys := []mlsag.DecoyInput{randomLedgerEntry(t, l), randomLedgerEntry(t, l)}
	input, err := mlsag.New(rand.Reader, secretKey, blinding, amount, decoys)
	if err != nil {
		t.Fatalf("mlsag.New: %v", err)
	}

	return ringct.Material{
		Inputs:  []ringct.MlsagMaterial{input},
		Outputs: []ringct.Output{{PublicKey: recipient, Amount: amount}},
	}
}

// TestScenarioS1 exercises a one-input, one-output transaction of amount
// 3, verified against ledger-supplied ring commitments.
func TestScenarioS1(t *testing.T) {
	l := newLedger()
	recipient, err := curve.RandomPoint(rand.Reader)
	if err != nil {
		t.Fatalf("RandomPoint: %v", err)
	}
	material := newSingleInputMaterial(t, l, 3, recipient)

	tx, revealed, err := material.Sign(rand.Reader)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(revealed) != 1 || revealed[0].Value != 3 {
		t.Fatalf("unexpected revealed commitments: %+v", revealed)
	}

	if err := tx.Verify(publicCommitmentsPerRing(t, l, tx)); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
}

// TestScenarioS2: replacing one ring's supplied public commitment with a
// random group element must fail MLSAG verification.
func TestScenarioS2(t *testing.T) {
	l := newLedger()
	recipient, _ := curve.RandomPoint(rand.Reader)
	material := newSingleInputMaterial(t, l, 3, recipient)
	tx, _, err := material.Sign(rand.Reader)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	commitments := publicCommitmentsPerRing(t, l, tx)
	randomPoint, _ := curve.RandomPoint(rand.Reader)
	commitments[0][0] = randomPoint

	if err := tx.Verify(commitments); err != ringct.ErrInvalidSignature {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

// TestScenarioS3: overwriting one output's commitment with a random group
// element must fail either with RangeProofFailure or CommitmentsDoNotBalance.
func TestScenarioS3(t *testing.T) {
	l := newLedger()
	recipient, _ := curve.RandomPoint(rand.Reader)
	material := newSingleInputMaterial(t, l, 3, recipient)
	tx, _, err := material.Sign(rand.Reader)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	randomPoint, _ := curve.RandomPoint(rand.Reader)
	tx.Outputs[0].Commitment = randomPoint

	err = tx.Verify(publicCommitmentsPerRing(t, l, tx))
	if err != ringct.ErrRangeProofFailure && err != ringct.ErrCommitmentsDoNotBalance {
		t.Errorf("expected RangeProofFailure or CommitmentsDoNotBalance, got %v", err)
	}
}

// TestScenarioS4: two inputs sharing the same true secret key must
// collide on key image. Both inputs spend the same ledger entry (same
// public key, amount and blinding), since the ledger holds one commitment
// per public key.
func TestScenarioS4(t *testing.T) {
	l := newLedger()
	pg := curve.DefaultPedersenGens()
	secretKey, _ := curve.RandomScalar(rand.Reader)
	blinding, _ := curve.RandomScalar(rand.Reader)

	buildInput := func(amount ringct.Amount) ringct.MlsagMaterial {
		truePublicKey := pg.Gb.ScalarMul(secretKey)
		trueCommitment := ringct.RevealedCommitment{Value: amount, Blinding: blinding}.Commit(pg)
		l.put(truePublicKey, trueCommitment)
		decoys := []mlsag.DecoyInput{randomLedgerEntry(t, l), randomLedgerEntry(t, l)}
		input, err := mlsag.New(rand.Reader, secretKey, blinding, amount, decoys)
		if err != nil {
			t.Fatalf("mlsag.New: %v", err)
		}
		return input
	}

	input1 := buildInput(5)
	input2 := buildInput(5)
	recipient, _ := curve.RandomPoint(rand.Reader)

	material := ringct.Material{
		Inputs:  []ringct.MlsagMaterial{input1, input2},
		Outputs: []ringct.Output{{PublicKey: recipient, Amount: 10}},
	}
	tx, _, err := material.Sign(rand.Reader)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := tx.Verify(publicCommitmentsPerRing(t, l, tx)); err != ringct.ErrKeyImageNotUniqueAcrossInputs {
		t.Errorf("expected ErrKeyImageNotUniqueAcrossInputs, got %v", err)
	}
}

// TestScenarioS5: two inputs whose rings share a public key must fail
// public-key uniqueness.
func TestScenarioS5(t *testing.T) {
	l := newLedger()
	pg := curve.DefaultPedersenGens()

	sharedDecoySk, _ := curve.RandomScalar(rand.Reader)
	sharedDecoyBlinding, _ := curve.RandomScalar(rand.Reader)
	sharedDecoyPk := pg.Gb.ScalarMul(sharedDecoySk)
	sharedDecoyCommitment := ringct.RevealedCommitment{Value: 99, Blinding: sharedDecoyBlinding}.Commit(pg)
	l.put(sharedDecoyPk, sharedDecoyCommitment)
	sharedDecoy := mlsag.DecoyInput{PublicKey: sharedDecoyPk, Commitment: sharedDecoyCommitment}

	buildInput := func(amount ringct.Amount) ringct.MlsagMaterial {
		secretKey, _ := curve.RandomScalar(rand.Reader)
		blinding, _ := curve.RandomScalar(rand.Reader)
		truePublicKey := pg.Gb.ScalarMul(secretKey)
		trueCommitment := ringct.RevealedCommitment{Value: amount, Blinding: blinding}.Commit(pg)
		l.put(truePublicKey, trueCommitment)
		decoys := []mlsag.DecoyInput{sharedDecoy, randomLedgerEntry(t, l)}
		input, err := mlsag.New(rand.Reader, secretKey, blinding, amount, decoys)
		if err != nil {
			t.Fatalf("mlsag.New: %v", err)
		}
		return input
	}

	input1 := buildInput(4)
	input2 := buildInput(6)
	recipient, _ := curve.RandomPoint(rand.Reader)

	material := ringct.Material{
		Inputs:  []ringct.MlsagMaterial{input1, input2},
		Outputs: []ringct.Output{{PublicKey: recipient, Amount: 10}},
	}
	tx, _, err := material.Sign(rand.Reader)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	err = tx.Verify(publicCommitmentsPerRing(t, l, tx))
	if err != ringct.ErrPublicKeyNotUniqueAcrossInputs {
		t.Errorf("expected ErrPublicKeyNotUniqueAcrossInputs, got %v", err)
	}
}

// TestScenarioS6 covers two inputs totaling 10 split across two outputs
// of 4 and 6; verification succeeds.
func TestScenarioS6(t *testing.T) {
	l := newLedger()
	pg := curve.DefaultPedersenGens()

	buildInput := func(amount ringct.Amount) ringct.MlsagMaterial {
		secretKey, _ := curve.RandomScalar(rand.Reader)
		blinding, _ := curve.RandomScalar(rand.Reader)
		truePublicKey := pg.Gb.ScalarMul(secretKey)
		trueCommitment := ringct.RevealedCommitment{Value: amount, Blinding: blinding}.Commit(pg)
		l.put(truePublicKey, trueCommitment)
		decoys := []mlsag.DecoyInput{randomLedgerEntry(t, l), randomLedgerEntry(t, l)}
		input, err := mlsag.New(rand.Reader, secretKey, blinding, amount, decoys)
		if err != nil {
			t.Fatalf("mlsag.New: %v", err)
		}
		return input
	}

	input1 := buildInput(4)
	input2 := buildInput(6)
	recipient1, _ := curve.RandomPoint(rand.Reader)
	recipient2, _ := curve.RandomPoint(rand.Reader)

	material := ringct.Material{
		Inputs: []ringct.MlsagMaterial{input1, input2},
		Outputs: []ringct.Output{
			{PublicKey: recipient1, Amount: 4},
			{PublicKey: recipient2, Amount: 6},
		},
	}
	tx, _, err := material.Sign(rand.Reader)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := tx.Verify(publicCommitmentsPerRing(t, l, tx)); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
}

// TestMessageAgreement checks property 2: the message the assembler
// signed over is byte-identical to GenMessage on the resulting
// transaction.
func TestMessageAgreement(t *testing.T) {
	l := newLedger()
	recipient, _ := curve.RandomPoint(rand.Reader)
	material := newSingleInputMaterial(t, l, 3, recipient)
	tx, _, err := material.Sign(rand.Reader)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	msg := tx.GenMessage()
	if err := tx.Mlsags[0].Verify(msg, publicCommitmentsPerRing(t, l, tx)[0]); err != nil {
		t.Errorf("signature does not verify against GenMessage's output: %v", err)
	}
}

// TestHashDeterminism checks property 3.
func TestHashDeterminism(t *testing.T) {
	l := newLedger()
	recipient, _ := curve.RandomPoint(rand.Reader)
	material := newSingleInputMaterial(t, l, 3, recipient)
	tx, _, err := material.Sign(rand.Reader)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	h1 := tx.Hash()
	h2 := tx.Hash()
	if h1 != h2 {
		t.Error("Hash should be deterministic across calls")
	}
}

// TestCommitmentBalance checks property 4.
func TestCommitmentBalance(t *testing.T) {
	l := newLedger()
	recipient, _ := curve.RandomPoint(rand.Reader)
	material := newSingleInputMaterial(t, l, 3, recipient)
	tx, _, err := material.Sign(rand.Reader)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	inputSum := tx.Mlsags[0].PseudoCommitment()
	outputSum := tx.Outputs[0].Commitment
	if !inputSum.Equal(outputSum) {
		t.Error("single-input, single-output pseudo-commitment should equal the output commitment")
	}
}

// TestTamperDetection checks property 7: flipping a byte changes the
// Bytes() encoding, and altering an output public key makes Verify reject
// the transaction.
func TestTamperDetection(t *testing.T) {
	l := newLedger()
	recipient, _ := curve.RandomPoint(rand.Reader)
	material := newSingleInputMaterial(t, l, 3, recipient)
	tx, _, err := material.Sign(rand.Reader)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	original := tx.Bytes()
	tampered := append([]byte(nil), original...)
	tampered[0] ^= 0xFF
	if bytes.Equal(original, tampered) {
		t.Fatal("tampering did not change the byte encoding")
	}

	tx.Outputs[0].PublicKey = recipient.Add(curve.DefaultPedersenGens().Gv)
	if err := tx.Verify(publicCommitmentsPerRing(t, l, tx)); err == nil {
		t.Error("expected verification to fail after tampering with an output public key")
	}
}

// TestNoInputsFails checks the NoInputs precondition.
func TestNoInputsFails(t *testing.T) {
	recipient, _ := curve.RandomPoint(rand.Reader)
	material := ringct.Material{
		Inputs:  nil,
		Outputs: []ringct.Output{{PublicKey: recipient, Amount: 1}},
	}
	if _, _, err := material.Sign(rand.Reader); err != ringct.ErrNoInputs {
		t.Errorf("expected ErrNoInputs, got %v", err)
	}
}

// TestNoOutputsFails checks the NoOutputs precondition.
func TestNoOutputsFails(t *testing.T) {
	l := newLedger()
	pg := curve.DefaultPedersenGens()
	secretKey, _ := curve.RandomScalar(rand.Reader)
	blinding, _ := curve.RandomScalar(rand.Reader)
	truePublicKey := pg.Gb.ScalarMul(secretKey)
	trueCommitment := ringct.RevealedCommitment{Value: 1, Blinding: blinding}.Commit(pg)
	l.put(truePublicKey, trueCommitment)
	decoys := []mlsag.DecoyInput{randomLedgerEntry(t, l)}
	input, err := mlsag.New(rand.Reader, secretKey, blinding, 1, decoys)
	if err != nil {
		t.Fatalf("mlsag.New: %v", err)
	}

	material := ringct.Material{Inputs: []ringct.MlsagMaterial{input}, Outputs: nil}
	if _, _, err := material.Sign(rand.Reader); err != ringct.ErrNoOutputs {
		t.Errorf("expected ErrNoOutputs, got %v", err)
	}
}

// TestEmptyTransactionFailsVerification checks TransactionMustHaveAnInput.
func TestEmptyTransactionFailsVerification(t *testing.T) {
	tx := ringct.Transaction{}
	if err := tx.Verify(nil); err != ringct.ErrTransactionMustHaveAnInput {
		t.Errorf("expected ErrTransactionMustHaveAnInput, got %v", err)
	}
}
