package ringct

import (
	"io"

	"github.com/ccoin/ringct/pkg/curve"
)

// Amount is a cleartext 64-bit non-negative value. The range proof below
// is fixed at 64 bits, so no value greater than 2^64-1 can ever be
// represented.
type Amount uint64

// RevealedCommitment is the pair (value, blinding) that opens a Pedersen
// commitment. Two RevealedCommitments are equivalent iff both fields
// match; Commit is a deterministic function of the pair.
type RevealedCommitment struct {
	Value    Amount
	Blinding curve.Scalar
}

// Commit returns the Pedersen commitment value*Gv + blinding*Gb.
func (r RevealedCommitment) Commit(pg curve.PedersenGens) curve.Point {
	return pg.Gv.ScalarMul(curve.ScalarFromUint64(uint64(r.Value))).Add(pg.Gb.ScalarMul(r.Blinding))
}

// NewRevealedCommitment draws a fresh blinding factor from rng and commits
// to value.
func NewRevealedCommitment(value Amount, rng io.Reader) (RevealedCommitment, error) {
	blinding, err := curve.RandomScalar(rng)
	if err != nil {
		return RevealedCommitment{}, err
	}
	return RevealedCommitment{Value: value, Blinding: blinding}, nil
}
