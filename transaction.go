package ringct

import (
	"golang.org/x/crypto/sha3"

	"github.com/ccoin/ringct/pkg/curve"
	"github.com/ccoin/ringct/pkg/rangeproof"
	"github.com/ccoin/ringct/pkg/transcript"
)

// Transaction is an ordered list of ring signatures and an ordered list of
// output proofs. Order in both lists is significant: the signing message,
// the byte encoding, the digest, and every verification check walk both
// lists positionally, so reordering either one changes all four.
type Transaction struct {
	Mlsags  []MlsagSignature
	Outputs []OutputProof
}

// GenMessage reconstructs the canonical signing message from the
// transaction alone, with no access to the secrets Material.Sign used to
// build it. Material.Sign and GenMessage both call through genMessage, so
// the message a signer produced and the message a verifier reconstructs
// can never diverge.
func (t Transaction) GenMessage() []byte {
	ringPublicKeys := make([][]curve.Point, len(t.Mlsags))
	keyImages := make([]curve.Point, len(t.Mlsags))
	pseudoCommitments := make([]curve.Point, len(t.Mlsags))
	for i, sig := range t.Mlsags {
		ringPublicKeys[i] = sig.PublicKeys()
		keyImages[i] = sig.KeyImage()
		pseudoCommitments[i] = sig.PseudoCommitment()
	}
	return genMessage(ringPublicKeys, keyImages, pseudoCommitments, t.Outputs)
}

// Bytes returns the canonical encoding of the whole transaction: every
// MlsagSignature's canonical bytes in order, followed by every
// OutputProof's canonical bytes in order.
func (t Transaction) Bytes() []byte {
	var out []byte
	for _, sig := range t.Mlsags {
		out = append(out, sig.Bytes()...)
	}
	for _, op := range t.Outputs {
		out = append(out, op.Bytes()...)
	}
	return out
}

// Hash returns the SHA3-256 digest of Bytes(), a stable transaction
// identifier. It covers the finished signatures and proofs, not the
// message signed to produce them, so it is not interchangeable with
// GenMessage's output.
func (t Transaction) Hash() [32]byte {
	return sha3.Sum256(t.Bytes())
}

// Verify runs the following seven checks, in order, returning on the first
// failure:
//
//  1. Reconstruct the signing message from the transaction alone.
//  2. Verify each MLSAG against that message and its ring's public
//     commitments.
//  3. Verify every range proof against its output commitment, sharing one
//     transcript across outputs in order.
//  4. Require at least one input.
//  5. Require every input's key image to be unique.
//  6. Require every public key across all flattened rings to be unique.
//  7. Require the input pseudo-commitments and output commitments to sum
//     to the same point.
//
// publicCommitmentsPerRing supplies, positionally, one slice of public
// commitments per input, each of length equal to that input's ring size
// and in the same order as the ring's public keys.
func (t Transaction) Verify(publicCommitmentsPerRing [][]curve.Point) error {
	// 1. Reconstruct the signing message from the transaction alone.
	msg := t.GenMessage()

	// 2. Verify each MLSAG against (message, its ring's public commitments).
	for i, sig := range t.Mlsags {
		var commitments []curve.Point
		if i < len(publicCommitmentsPerRing) {
			commitments = publicCommitmentsPerRing[i]
		}
		if err := sig.Verify(msg, commitments); err != nil {
			return ErrInvalidSignature
		}
	}

	// 3. Verify every range proof against its output commitment, sharing
	// one transcript in output order.
	pg := curve.DefaultPedersenGens()
	bpGens := rangeproof.DefaultGens()
	tr := transcript.New([]byte(TranscriptLabel))
	for _, op := range t.Outputs {
		if err := rangeproof.VerifySingle(tr, bpGens, pg, op.Commitment, op.RangeProof); err != nil {
			return ErrRangeProofFailure
		}
	}

	// 4. Structural: at least one input.
	if len(t.Mlsags) == 0 {
		return ErrTransactionMustHaveAnInput
	}

	// 5. Key-image uniqueness across inputs.
	seenImages := make(map[[curve.CompressedPointSize]byte]struct{}, len(t.Mlsags))
	for _, sig := range t.Mlsags {
		k := sig.KeyImage().Bytes()
		if _, ok := seenImages[k]; ok {
			return ErrKeyImageNotUniqueAcrossInputs
		}
		seenImages[k] = struct{}{}
	}

	// 6. Public-key uniqueness across all flattened rings.
	seenKeys := make(map[[curve.CompressedPointSize]byte]struct{})
	total := 0
	for _, sig := range t.Mlsags {
		for _, pk := range sig.PublicKeys() {
			seenKeys[pk.Bytes()] = struct{}{}
			total++
		}
	}
	if len(seenKeys) != total {
		return ErrPublicKeyNotUniqueAcrossInputs
	}

	// 7. Homomorphic balance check.
	inputSum := curve.IdentityPoint()
	for _, sig := range t.Mlsags {
		inputSum = inputSum.Add(sig.PseudoCommitment())
	}
	outputSum := curve.IdentityPoint()
	for _, op := range t.Outputs {
		outputSum = outputSum.Add(op.Commitment)
	}
	if !inputSum.Equal(outputSum) {
		return ErrCommitmentsDoNotBalance
	}

	return nil
}
