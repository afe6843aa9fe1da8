package ringct

import (
	"github.com/ccoin/ringct/pkg/curve"
	"github.com/ccoin/ringct/pkg/rangeproof"
)

// OutputProof is the on-wire form of an output: a recipient public key, a
// Pedersen commitment, and the range proof binding the commitment to a
// value in [0, 2^64).
type OutputProof struct {
	PublicKey  curve.Point
	Commitment curve.Point
	RangeProof rangeproof.Proof
}

// outputProofSize is the fixed length of OutputProof.Bytes: a compressed
// public key, the range proof's fixed-width encoding, and a compressed
// commitment, with no length prefixes needed since every field already
// has a constant width.
const outputProofSize = 2*curve.CompressedPointSize + rangeproof.Size

// Bytes returns the canonical encoding: compressed public_key, the range
// proof's canonical bytes, compressed commitment, in that exact order.
func (p OutputProof) Bytes() []byte {
	out := make([]byte, 0, outputProofSize)
	pk := p.PublicKey.Bytes()
	out = append(out, pk[:]...)
	out = append(out, p.RangeProof.Bytes()...)
	c := p.Commitment.Bytes()
	out = append(out, c[:]...)
	return out
}

// outputProofFromBytes decodes an OutputProof produced by Bytes.
func outputProofFromBytes(data []byte) (OutputProof, error) {
	if len(data) != outputProofSize {
		return OutputProof{}, ErrMalformedEncoding
	}
	pk, err := curve.PointFromBytes(data[:curve.CompressedPointSize])
	if err != nil {
		return OutputProof{}, ErrMalformedEncoding
	}
	proof, err := rangeproof.FromBytes(data[curve.CompressedPointSize : curve.CompressedPointSize+rangeproof.Size])
	if err != nil {
		return OutputProof{}, ErrMalformedEncoding
	}
	commitment, err := curve.PointFromBytes(data[curve.CompressedPointSize+rangeproof.Size:])
	if err != nil {
		return OutputProof{}, ErrMalformedEncoding
	}
	return OutputProof{PublicKey: pk, Commitment: commitment, RangeProof: proof}, nil
}
