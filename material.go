package ringct

import (
	"io"

	"github.com/ccoin/ringct/pkg/curve"
	"github.com/ccoin/ringct/pkg/rangeproof"
	"github.com/ccoin/ringct/pkg/transcript"
)

// TranscriptLabel is the fixed domain label every range-proof transcript
// in this engine is seeded with.
const TranscriptLabel = "BLST_RINGCT"

// MlsagMaterial is the per-input collaborator contract the assembler
// signs against. The assembler never reaches past this interface into a
// concrete ring-signature implementation; pkg/mlsag supplies one, but any
// type satisfying this contract can stand in for it.
type MlsagMaterial interface {
	// PublicKeys returns the full ring in order; the true key sits at a
	// position chosen internally by the implementation.
	PublicKeys() []curve.Point
	// KeyImage returns the deterministic double-spend tag derived from
	// the true secret key.
	KeyImage() curve.Point
	// RandomPseudoCommitment commits to the input's true amount with a
	// fresh blinding drawn from rng.
	RandomPseudoCommitment(rng io.Reader) (RevealedCommitment, error)
	// Sign produces a ring signature over msg, proving knowledge of the
	// secret key for exactly one ring member whose public commitment,
	// adjusted by pseudoCommitment, opens under blinding-difference
	// knowledge — without revealing which member.
	Sign(msg []byte, pseudoCommitment RevealedCommitment, pg curve.PedersenGens) (MlsagSignature, error)
}

// MlsagSignature is the signed ring-signature object produced by an
// MlsagMaterial.
type MlsagSignature interface {
	// PublicKeys returns the ring this signature was produced over, in
	// the same order as the originating MlsagMaterial.
	PublicKeys() []curve.Point
	// KeyImage returns this input's double-spend tag.
	KeyImage() curve.Point
	// PseudoCommitment returns the pseudo-commitment point this
	// signature was bound to.
	PseudoCommitment() curve.Point
	// Verify checks the signature against msg and the ring's public
	// commitments, supplied positionally in ring order.
	Verify(msg []byte, publicCommitments []curve.Point) error
	// Bytes returns the signature's canonical byte encoding.
	Bytes() []byte
}

// Material is the transaction assembler: the caller's per-input signing
// bundles plus the declared outputs.
type Material struct {
	Inputs  []MlsagMaterial
	Outputs []Output
}

// Sign runs the following steps, in order — the order is normative, since
// the signing message built in step 6 depends on every output and input
// commitment produced by the steps before it:
//
//  1. Draw a fresh pseudo-commitment per input.
//  2. Draw a fresh blinding for every output but the last.
//  3. Compute the last output's blinding as the exact correction term so
//     that the sum of input blindings equals the sum of output blindings.
//  4. Materialize the last output's commitment with that correction.
//  5. Produce one range proof per output, sharing a single transcript.
//  6. Build the canonical signing message from every ring's public keys,
//     key images, pseudo-commitments, and output proofs.
//  7. Produce one MLSAG per input over that message.
//  8. Return the transaction plus the RevealedCommitments for each
//     output, in output order, for the sender to retain.
func (m Material) Sign(rng io.Reader) (Transaction, []RevealedCommitment, error) {
	if len(m.Inputs) == 0 {
		return Transaction{}, nil, ErrNoInputs
	}
	if len(m.Outputs) == 0 {
		return Transaction{}, nil, ErrNoOutputs
	}

	pg := curve.DefaultPedersenGens()
	bpGens := rangeproof.DefaultGens()

	// Step 1: one freshly randomized pseudo-commitment per input.
	revealedPseudo := make([]RevealedCommitment, len(m.Inputs))
	pseudoCommitments := make([]curve.Point, len(m.Inputs))
	for i, in := range m.Inputs {
		rc, err := in.RandomPseudoCommitment(rng)
		if err != nil {
			return Transaction{}, nil, err
		}
		revealedPseudo[i] = rc
		pseudoCommitments[i] = rc.Commit(pg)
	}

	// Steps 2-4: random blindings for every output but the last; the
	// last output's blinding is the exact correction term, computed only
	// after every other blinding is fixed.
	revealedOutputs := make([]revealedOutputCommitment, len(m.Outputs))
	sumInputBlinding := curve.ZeroScalar()
	for _, rc := range revealedPseudo {
		sumInputBlinding = sumInputBlinding.Add(rc.Blinding)
	}
	sumChosenOutputBlinding := curve.ZeroScalar()
	for i := 0; i < len(m.Outputs)-1; i++ {
		rc, err := m.Outputs[i].RandomCommitment(rng)
		if err != nil {
			return Transaction{}, nil, err
		}
		revealedOutputs[i] = revealedOutputCommitment{PublicKey: m.Outputs[i].PublicKey, Commitment: rc}
		sumChosenOutputBlinding = sumChosenOutputBlinding.Add(rc.Blinding)
	}
	blindingCorrection := sumInputBlinding.Sub(sumChosenOutputBlinding)
	lastIdx := len(m.Outputs) - 1
	revealedOutputs[lastIdx] = revealedOutputCommitment{
		PublicKey: m.Outputs[lastIdx].PublicKey,
		Commitment: RevealedCommitment{
			Value:    m.Outputs[lastIdx].Amount,
			Blinding: blindingCorrection,
		},
	}

	// Step 5: one shared transcript across every output's range proof.
	tr := transcript.New([]byte(TranscriptLabel))
	outputProofs := make([]OutputProof, len(revealedOutputs))
	for i, ro := range revealedOutputs {
		proof, commitment, err := rangeproof.ProveSingle(tr, bpGens, pg, uint64(ro.Commitment.Value), ro.Commitment.Blinding, rng)
		if err != nil {
			return Transaction{}, nil, ErrRangeProofFailure
		}
		outputProofs[i] = OutputProof{PublicKey: ro.PublicKey, Commitment: commitment, RangeProof: proof}
	}

	// Step 6: the canonical signing message.
	ringPublicKeys := make([][]curve.Point, len(m.Inputs))
	keyImages := make([]curve.Point, len(m.Inputs))
	for i, in := range m.Inputs {
		ringPublicKeys[i] = in.PublicKeys()
		keyImages[i] = in.KeyImage()
	}
	msg := genMessage(ringPublicKeys, keyImages, pseudoCommitments, outputProofs)

	// Step 7: one MLSAG per input over that message.
	mlsags := make([]MlsagSignature, len(m.Inputs))
	for i, in := range m.Inputs {
		sig, err := in.Sign(msg, revealedPseudo[i], pg)
		if err != nil {
			return Transaction{}, nil, err
		}
		mlsags[i] = sig
	}

	// Step 8: the transaction and the caller's retained commitments.
	revealedCommitments := make([]RevealedCommitment, len(revealedOutputs))
	for i, ro := range revealedOutputs {
		revealedCommitments[i] = ro.Commitment
	}

	return Transaction{Mlsags: mlsags, Outputs: outputProofs}, revealedCommitments, nil
}

// genMessage builds the canonical signing message from its constituent
// parts. It is shared between Material.Sign and Transaction.GenMessage so
// the two views can never diverge.
func genMessage(ringPublicKeys [][]curve.Point, keyImages, pseudoCommitments []curve.Point, outputs []OutputProof) []byte {
	var out []byte
	for _, ring := range ringPublicKeys {
		for _, pk := range ring {
			b := pk.Bytes()
			out = append(out, b[:]...)
		}
	}
	for _, ki := range keyImages {
		b := ki.Bytes()
		out = append(out, b[:]...)
	}
	for _, pc := range pseudoCommitments {
		b := pc.Bytes()
		out = append(out, b[:]...)
	}
	for _, op := range outputs {
		out = append(out, op.Bytes()...)
	}
	return out
}
