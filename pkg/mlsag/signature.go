package mlsag

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/ccoin/ringct/pkg/curve"
)

// Signature is a signed dual-key ring signature: the ring it was produced
// over, the key image, the pseudo-commitment it is bound to, and the
// challenge/response scalars that let a verifier walk the ring closed.
// It implements ringct.MlsagSignature.
type Signature struct {
	keys             []curve.Point
	keyImage         curve.Point
	pseudoCommitment curve.Point
	c0               curve.Scalar
	s1               []curve.Scalar
	s2               []curve.Scalar
}

// PublicKeys returns the ring this signature was produced over.
func (s *Signature) PublicKeys() []curve.Point {
	return append([]curve.Point(nil), s.keys...)
}

// KeyImage returns this input's double-spend tag.
func (s *Signature) KeyImage() curve.Point {
	return s.keyImage
}

// PseudoCommitment returns the pseudo-commitment point this signature is
// bound to.
func (s *Signature) PseudoCommitment() curve.Point {
	return s.pseudoCommitment
}

// Verify checks that the ring closes under msg and the caller-supplied
// public commitments, positionally matched to PublicKeys().
func (s *Signature) Verify(msg []byte, publicCommitments []curve.Point) error {
	n := len(s.keys)
	if len(publicCommitments) != n {
		return ErrRingSizeMismatch
	}

	diffs := make([]curve.Point, n)
	for i := range diffs {
		diffs[i] = publicCommitments[i].Add(s.pseudoCommitment.Neg())
	}

	pg := curve.DefaultPedersenGens()
	c := s.c0
	for i := 0; i < n; i++ {
		hpI := curve.HashToPoint(pointBytes(s.keys[i]))
		li1 := pg.Gb.ScalarMul(s.s1[i]).Add(s.keys[i].ScalarMul(c))
		ri1 := hpI.ScalarMul(s.s1[i]).Add(s.keyImage.ScalarMul(c))
		li2 := pg.Gb.ScalarMul(s.s2[i]).Add(diffs[i].ScalarMul(c))

		next := ringChallenge(msg, li1, ri1, li2)
		if i == n-1 {
			if !next.Equal(s.c0) {
				return ErrVerificationFailed
			}
		} else {
			c = next
		}
	}
	return nil
}

// Bytes returns the canonical encoding: a 4-byte big-endian ring-size
// prefix (ring size varies per input, unlike the fixed-width range proof
// encoding), the ring's compressed public keys, the compressed key image
// and pseudo-commitment, the anchor challenge, and the two response
// scalar vectors, all in ring order.
func (s *Signature) Bytes() []byte {
	n := len(s.keys)
	out := make([]byte, 0, 4+n*curve.CompressedPointSize+2*curve.CompressedPointSize+curve.ScalarSize+2*n*curve.ScalarSize)

	var nb [4]byte
	binary.BigEndian.PutUint32(nb[:], uint32(n))
	out = append(out, nb[:]...)

	for _, k := range s.keys {
		b := k.Bytes()
		out = append(out, b[:]...)
	}
	ki := s.keyImage.Bytes()
	out = append(out, ki[:]...)
	pc := s.pseudoCommitment.Bytes()
	out = append(out, pc[:]...)
	c0 := s.c0.Bytes()
	out = append(out, c0[:]...)
	for _, sc := range s.s1 {
		b := sc.Bytes()
		out = append(out, b[:]...)
	}
	for _, sc := range s.s2 {
		b := sc.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// FromBytes decodes a Signature produced by Bytes.
func FromBytes(data []byte) (*Signature, error) {
	if len(data) < 4 {
		return nil, ErrVerificationFailed
	}
	n := int(binary.BigEndian.Uint32(data[:4]))
	off := 4
	want := 4 + n*curve.CompressedPointSize + 2*curve.CompressedPointSize + curve.ScalarSize + 2*n*curve.ScalarSize
	if n <= 0 || len(data) != want {
		return nil, ErrVerificationFailed
	}

	readPoint := func() (curve.Point, error) {
		p, err := curve.PointFromBytes(data[off : off+curve.CompressedPointSize])
		off += curve.CompressedPointSize
		return p, err
	}
	readScalar := func() curve.Scalar {
		s := curve.ScalarFromBytesReduce(data[off : off+curve.ScalarSize])
		off += curve.ScalarSize
		return s
	}

	keys := make([]curve.Point, n)
	for i := range keys {
		p, err := readPoint()
		if err != nil {
			return nil, err
		}
		keys[i] = p
	}
	keyImage, err := readPoint()
	if err != nil {
		return nil, err
	}
	pseudoCommitment, err := readPoint()
	if err != nil {
		return nil, err
	}
	c0 := readScalar()
	s1 := make([]curve.Scalar, n)
	for i := range s1 {
		s1[i] = readScalar()
	}
	s2 := make([]curve.Scalar, n)
	for i := range s2 {
		s2[i] = readScalar()
	}

	return &Signature{
		keys:             keys,
		keyImage:         keyImage,
		pseudoCommitment: pseudoCommitment,
		c0:               c0,
		s1:               s1,
		s2:               s2,
	}, nil
}

// ringChallenge is the MLSAG ring's own Fiat-Shamir hash, a direct SHA3-256
// digest kept separate from pkg/transcript's Merlin-style transcript
// (that one is dedicated to range proofs). It binds the signing message
// and the three commitment points at one ring step into the next step's
// challenge scalar.
func ringChallenge(msg []byte, l1, r1, l2 curve.Point) curve.Scalar {
	h := sha3.New256()
	h.Write(msg)
	b1 := l1.Bytes()
	h.Write(b1[:])
	b2 := r1.Bytes()
	h.Write(b2[:])
	b3 := l2.Bytes()
	h.Write(b3[:])
	return curve.ScalarFromBytesReduce(h.Sum(nil))
}
