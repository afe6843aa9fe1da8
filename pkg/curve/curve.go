// Package curve wraps the BLS12-381 G1 group and its scalar field for the
// RingCT engine: scalar multiplication, group addition, negation,
// comparison, compressed (de)serialization, and random point/scalar
// generation from an explicit randomness source. Everything above this
// package — commitments, range proofs, ring signatures — is built purely
// in terms of Point and Scalar, never the underlying gnark-crypto types.
package curve

import (
	"errors"
	"io"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// CompressedPointSize is the byte length of a compressed G1 point on this
// curve.
const CompressedPointSize = 48

// ScalarSize is the byte length of a canonical big-endian scalar encoding.
const ScalarSize = 32

// ErrMalformedPoint is returned when bytes do not decode to a valid,
// on-curve, in-subgroup G1 point.
var ErrMalformedPoint = errors.New("curve: malformed point encoding")

// Scalar is an element of the BLS12-381 G1 scalar field.
type Scalar struct {
	inner fr.Element
}

// ScalarFromUint64 embeds a small non-negative integer as a scalar.
func ScalarFromUint64(v uint64) Scalar {
	var s Scalar
	s.inner.SetUint64(v)
	return s
}

// ZeroScalar is the additive identity of the scalar field.
func ZeroScalar() Scalar {
	return Scalar{}
}

// RandomScalar draws a uniformly random scalar from rng. The caller
// supplies the randomness source explicitly rather than this package
// reaching for crypto/rand itself, so callers can swap in a deterministic
// reader for testing; rng is expected to be cryptographically secure in
// production.
func RandomScalar(rng io.Reader) (Scalar, error) {
	// Sample twice the field width to keep modular bias negligible.
	buf := make([]byte, 2*ScalarSize)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return Scalar{}, err
	}
	bi := new(big.Int).SetBytes(buf)
	bi.Mod(bi, fr.Modulus())
	var s Scalar
	s.inner.SetBigInt(bi)
	return s, nil
}

// ScalarFromBytesReduce interprets data as a big-endian integer and reduces
// it modulo the scalar field order. Used to turn arbitrary-length hash
// output (transcript challenges, Fiat-Shamir hashes) into a scalar.
func ScalarFromBytesReduce(data []byte) Scalar {
	bi := new(big.Int).SetBytes(data)
	bi.Mod(bi, fr.Modulus())
	var s Scalar
	s.inner.SetBigInt(bi)
	return s
}

// Bytes returns the canonical 32-byte big-endian encoding of s.
func (s Scalar) Bytes() [ScalarSize]byte {
	var out [ScalarSize]byte
	bi := new(big.Int)
	s.inner.BigInt(bi)
	bi.FillBytes(out[:])
	return out
}

// Add returns s + other.
func (s Scalar) Add(other Scalar) Scalar {
	var r Scalar
	r.inner.Add(&s.inner, &other.inner)
	return r
}

// Sub returns s - other.
func (s Scalar) Sub(other Scalar) Scalar {
	var r Scalar
	r.inner.Sub(&s.inner, &other.inner)
	return r
}

// Mul returns s * other.
func (s Scalar) Mul(other Scalar) Scalar {
	var r Scalar
	r.inner.Mul(&s.inner, &other.inner)
	return r
}

// Neg returns -s.
func (s Scalar) Neg() Scalar {
	var r Scalar
	r.inner.Neg(&s.inner)
	return r
}

// Inverse returns s^-1. Panics if s is zero, matching field-element
// semantics elsewhere in this package: inverting zero is a programmer error,
// never a runtime input.
func (s Scalar) Inverse() Scalar {
	if s.inner.IsZero() {
		panic("curve: inverse of zero scalar")
	}
	var r Scalar
	r.inner.Inverse(&s.inner)
	return r
}

// Equal reports whether s and other represent the same field element.
func (s Scalar) Equal(other Scalar) bool {
	return s.inner.Equal(&other.inner)
}

// IsZero reports whether s is the additive identity.
func (s Scalar) IsZero() bool {
	return s.inner.IsZero()
}

func (s Scalar) bigInt() *big.Int {
	bi := new(big.Int)
	s.inner.BigInt(bi)
	return bi
}

// Point is a point of the prime-order G1 subgroup.
type Point struct {
	inner bls12381.G1Affine
}

// IdentityPoint returns the group identity (point at infinity).
func IdentityPoint() Point {
	var p Point
	p.inner.SetInfinity()
	return p
}

// Add returns p + other.
func (p Point) Add(other Point) Point {
	var r Point
	r.inner.Add(&p.inner, &other.inner)
	return r
}

// Neg returns the inverse of p.
func (p Point) Neg() Point {
	var r Point
	r.inner.Neg(&p.inner)
	return r
}

// Sub returns p - other.
func (p Point) Sub(other Point) Point {
	return p.Add(other.Neg())
}

// ScalarMul returns s*p.
func (p Point) ScalarMul(s Scalar) Point {
	var r Point
	r.inner.ScalarMultiplication(&p.inner, s.bigInt())
	return r
}

// Equal reports whether p and other are the same point. Both sides are
// held in affine form, so comparison never has to account for differing
// projective representatives of the same point.
func (p Point) Equal(other Point) bool {
	return p.inner.Equal(&other.inner)
}

// Bytes returns the compressed 48-byte encoding of p.
func (p Point) Bytes() [CompressedPointSize]byte {
	var out [CompressedPointSize]byte
	copy(out[:], p.inner.Marshal())
	return out
}

// PointFromBytes decodes a compressed point, failing with ErrMalformedPoint
// on anything that does not parse to a valid subgroup member.
func PointFromBytes(data []byte) (Point, error) {
	if len(data) != CompressedPointSize {
		return Point{}, ErrMalformedPoint
	}
	var p Point
	if err := p.inner.Unmarshal(data); err != nil {
		return Point{}, ErrMalformedPoint
	}
	return p, nil
}

// SumPoints adds all the given points, returning the identity for an empty
// slice.
func SumPoints(points []Point) Point {
	sum := IdentityPoint()
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum
}

// RandomPoint draws a point from G by hashing fresh randomness onto the
// curve. Used by tests and decoy fixtures; never part of the signing or
// verification critical path.
func RandomPoint(rng io.Reader) (Point, error) {
	buf := make([]byte, 64)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return Point{}, err
	}
	return HashToPoint(buf), nil
}

// HashToPoint maps arbitrary bytes onto a point of G1 via the standard
// hash-to-curve construction, domain-separated for RingCT use. This backs
// both the MLSAG key-image hash function Hp and generator derivation.
func HashToPoint(data []byte) Point {
	aff, err := bls12381.HashToG1(data, []byte("BLST_RINGCT_H2C_V1_"))
	if err != nil {
		// HashToG1 only fails on malformed domain-separation tags, never on
		// message content; a fixed, well-formed DST cannot trigger this.
		panic("curve: hash-to-curve failed: " + err.Error())
	}
	return Point{inner: aff}
}
