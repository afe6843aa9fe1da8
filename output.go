package ringct

import (
	"io"

	"github.com/ccoin/ringct/pkg/curve"
)

// Output is declared by the sender: a recipient public key and a
// cleartext amount. The amount is cleartext only at this stage, before
// signing commits to it.
type Output struct {
	PublicKey curve.Point
	Amount    Amount
}

// RandomCommitment returns a RevealedCommitment for the output's amount
// with a freshly sampled blinding factor.
func (o Output) RandomCommitment(rng io.Reader) (RevealedCommitment, error) {
	return NewRevealedCommitment(o.Amount, rng)
}

// revealedOutputCommitment pairs a recipient public key with a revealed
// commitment for the duration of signing. It never leaves the assembler:
// Sign hands the caller the plain RevealedCommitments, not this internal
// pairing.
type revealedOutputCommitment struct {
	PublicKey  curve.Point
	Commitment RevealedCommitment
}
