// Package rangeproof implements a single-value, 64-bit, non-aggregated
// Bulletproof range proof over pkg/curve: a prover/verifier pair for
// proving a Pedersen commitment opens to a value in [0, 2^64) without
// revealing it, sharing a Merlin-style transcript with every other output
// in the same transaction.
//
// The construction follows the standard Bulletproofs protocol (Bünz et
// al., "Bulletproofs: Short Proofs for Confidential Transactions and
// More"): bit-decomposition vector commitments (A, S), the degree-2
// polynomial commitments (T1, T2), and a logarithmic-round inner-product
// compression that proves the final linear relation without revealing the
// witness vectors. It mirrors the structure of the reference
// implementation this module is grounded on (see DESIGN.md,
// "pkg/rangeproof" entry), adapted to pkg/curve and to a transcript the
// caller threads across every output in a transaction rather than
// starting fresh per proof.
package rangeproof

import (
	"errors"
	"fmt"
	"io"
	"math/bits"
	"sync"

	"github.com/ccoin/ringct/pkg/curve"
	"github.com/ccoin/ringct/pkg/transcript"
)

// BitWidth is the fixed range-proof width: every amount proven by this
// package lies in [0, 2^BitWidth).
const BitWidth = 64

// Parties is the fixed aggregation party count: this package only proves
// single-value, non-aggregated ranges, never a batch of several
// commitments folded into one proof.
const Parties = 1

var rounds = bits.TrailingZeros(uint(BitWidth)) // log2(64) = 6

// ErrRangeProofFailed is returned by VerifySingle when a proof fails to
// verify.
var ErrRangeProofFailed = errors.New("rangeproof: verification failed")

// ErrMalformedProof is returned by FromBytes on an incorrectly sized
// encoding.
var ErrMalformedProof = errors.New("rangeproof: malformed encoding")

// Gens is the fixed vector-generator set used for bit-vector commitments.
type Gens struct {
	G [BitWidth]curve.Point
	H [BitWidth]curve.Point
}

var (
	gensOnce sync.Once
	gens     Gens
)

// DefaultGens returns the process-wide Bulletproof vector generators,
// deriving them once and caching the result so every proof and
// verification in the process shares the same fixed generator set.
func DefaultGens() Gens {
	gensOnce.Do(func() {
		for i := 0; i < BitWidth; i++ {
			gens.G[i] = curve.HashToPoint([]byte(fmt.Sprintf("BLST_RINGCT_BP_G_%d", i)))
			gens.H[i] = curve.HashToPoint([]byte(fmt.Sprintf("BLST_RINGCT_BP_H_%d", i)))
		}
	})
	return gens
}

// Proof is a single-value Bulletproof range proof. Every field has a fixed
// width, so the encoding in Bytes is self-delimiting with no length
// prefixes needed.
type Proof struct {
	A, S   curve.Point
	T1, T2 curve.Point
	Taux   curve.Scalar
	Mu     curve.Scalar
	That   curve.Scalar
	L, R   [6]curve.Point
	AFinal curve.Scalar
	BFinal curve.Scalar
}

// Size is the fixed byte length of a Proof's canonical encoding.
const Size = (4+2*6)*curve.CompressedPointSize + 5*curve.ScalarSize

// Bytes returns the canonical, fixed-size encoding of the proof.
func (p Proof) Bytes() []byte {
	out := make([]byte, 0, Size)
	appendPoint := func(pt curve.Point) {
		b := pt.Bytes()
		out = append(out, b[:]...)
	}
	appendScalar := func(s curve.Scalar) {
		b := s.Bytes()
		out = append(out, b[:]...)
	}
	appendPoint(p.A)
	appendPoint(p.S)
	appendPoint(p.T1)
	appendPoint(p.T2)
	for i := 0; i < rounds; i++ {
		appendPoint(p.L[i])
	}
	for i := 0; i < rounds; i++ {
		appendPoint(p.R[i])
	}
	appendScalar(p.Taux)
	appendScalar(p.Mu)
	appendScalar(p.That)
	appendScalar(p.AFinal)
	appendScalar(p.BFinal)
	return out
}

// FromBytes decodes a proof produced by Bytes.
func FromBytes(data []byte) (Proof, error) {
	if len(data) != Size {
		return Proof{}, ErrMalformedProof
	}
	var p Proof
	off := 0
	readPoint := func() (curve.Point, error) {
		pt, err := curve.PointFromBytes(data[off : off+curve.CompressedPointSize])
		off += curve.CompressedPointSize
		return pt, err
	}
	readScalar := func() curve.Scalar {
		s := curve.ScalarFromBytesReduce(data[off : off+curve.ScalarSize])
		off += curve.ScalarSize
		return s
	}
	var err error
	if p.A, err = readPoint(); err != nil {
		return Proof{}, ErrMalformedProof
	}
	if p.S, err = readPoint(); err != nil {
		return Proof{}, ErrMalformedProof
	}
	if p.T1, err = readPoint(); err != nil {
		return Proof{}, ErrMalformedProof
	}
	if p.T2, err = readPoint(); err != nil {
		return Proof{}, ErrMalformedProof
	}
	for i := 0; i < rounds; i++ {
		if p.L[i], err = readPoint(); err != nil {
			return Proof{}, ErrMalformedProof
		}
	}
	for i := 0; i < rounds; i++ {
		if p.R[i], err = readPoint(); err != nil {
			return Proof{}, ErrMalformedProof
		}
	}
	p.Taux = readScalar()
	p.Mu = readScalar()
	p.That = readScalar()
	p.AFinal = readScalar()
	p.BFinal = readScalar()
	return p, nil
}

// ProveSingle proves that value (interpreted as a BitWidth-bit unsigned
// integer) is committed to by value*gens.Gv + blinding*gens.Gb, recording
// every Fiat-Shamir step on tr. tr must be positioned identically to the
// verifier's transcript at the point this output's proof begins — in
// practice, the same transcript threaded through every prior output's
// ProveSingle call in a transaction, so challenges bind across outputs.
func ProveSingle(tr *transcript.Transcript, bp Gens, pg curve.PedersenGens, value uint64, blinding curve.Scalar, rng io.Reader) (Proof, curve.Point, error) {
	commitment := pg.Gv.ScalarMul(curve.ScalarFromUint64(value)).Add(pg.Gb.ScalarMul(blinding))

	aL := bitDecompose(value)
	aR := make([]curve.Scalar, BitWidth)
	for i := range aL {
		aR[i] = aL[i].Sub(curve.ScalarFromUint64(1))
	}

	alpha, err := curve.RandomScalar(rng)
	if err != nil {
		return Proof{}, curve.Point{}, err
	}
	sL, err := randomScalarVector(rng, BitWidth)
	if err != nil {
		return Proof{}, curve.Point{}, err
	}
	sR, err := randomScalarVector(rng, BitWidth)
	if err != nil {
		return Proof{}, curve.Point{}, err
	}
	rho, err := curve.RandomScalar(rng)
	if err != nil {
		return Proof{}, curve.Point{}, err
	}

	A := pg.Gb.ScalarMul(alpha).Add(vectorCommit(bp.G[:], aL, bp.H[:], aR))
	S := pg.Gb.ScalarMul(rho).Add(vectorCommit(bp.G[:], sL, bp.H[:], sR))

	tr.AppendMessage("A", pointBytes(A))
	tr.AppendMessage("S", pointBytes(S))
	y := challengeScalar(tr, "y")
	z := challengeScalar(tr, "z")

	yN := powers(y, BitWidth)
	twoN := powers(curve.ScalarFromUint64(2), BitWidth)
	z2 := z.Mul(z)

	l0 := make([]curve.Scalar, BitWidth)
	l1 := sL
	r0 := make([]curve.Scalar, BitWidth)
	r1 := make([]curve.Scalar, BitWidth)
	for i := 0; i < BitWidth; i++ {
		l0[i] = aL[i].Sub(z)
		r0[i] = yN[i].Mul(aR[i].Add(z)).Add(z2.Mul(twoN[i]))
		r1[i] = yN[i].Mul(sR[i])
	}

	t1 := innerProduct(l0, r1).Add(innerProduct(l1, r0))
	t2 := innerProduct(l1, r1)

	tau1, err := curve.RandomScalar(rng)
	if err != nil {
		return Proof{}, curve.Point{}, err
	}
	tau2, err := curve.RandomScalar(rng)
	if err != nil {
		return Proof{}, curve.Point{}, err
	}
	T1 := pg.Gv.ScalarMul(t1).Add(pg.Gb.ScalarMul(tau1))
	T2 := pg.Gv.ScalarMul(t2).Add(pg.Gb.ScalarMul(tau2))

	tr.AppendMessage("T1", pointBytes(T1))
	tr.AppendMessage("T2", pointBytes(T2))
	x := challengeScalar(tr, "x")

	l := make([]curve.Scalar, BitWidth)
	r := make([]curve.Scalar, BitWidth)
	for i := 0; i < BitWidth; i++ {
		l[i] = l0[i].Add(x.Mul(l1[i]))
		r[i] = r0[i].Add(x.Mul(r1[i]))
	}
	that := innerProduct(l, r)
	x2 := x.Mul(x)
	taux := tau2.Mul(x2).Add(tau1.Mul(x)).Add(z2.Mul(blinding))
	mu := alpha.Add(rho.Mul(x))

	tr.AppendMessage("taux", scalarBytes(taux))
	tr.AppendMessage("mu", scalarBytes(mu))
	tr.AppendMessage("that", scalarBytes(that))
	w := challengeScalar(tr, "w")
	Q := pg.Gv.ScalarMul(w)

	yInv := y.Inverse()
	yInvN := powers(yInv, BitWidth)
	hPrime := make([]curve.Point, BitWidth)
	for i := 0; i < BitWidth; i++ {
		hPrime[i] = bp.H[i].ScalarMul(yInvN[i])
	}

	Ls, Rs, aFinal, bFinal := ipaProve(tr, append([]curve.Point(nil), bp.G[:]...), hPrime, Q, l, r)

	var proof Proof
	proof.A, proof.S, proof.T1, proof.T2 = A, S, T1, T2
	proof.Taux, proof.Mu, proof.That = taux, mu, that
	copy(proof.L[:], Ls)
	copy(proof.R[:], Rs)
	proof.AFinal, proof.BFinal = aFinal, bFinal

	return proof, commitment, nil
}

// VerifySingle verifies proof against commitment, replaying the same
// transcript operations ProveSingle performed.
func VerifySingle(tr *transcript.Transcript, bp Gens, pg curve.PedersenGens, commitment curve.Point, proof Proof) error {
	tr.AppendMessage("A", pointBytes(proof.A))
	tr.AppendMessage("S", pointBytes(proof.S))
	y := challengeScalar(tr, "y")
	z := challengeScalar(tr, "z")

	tr.AppendMessage("T1", pointBytes(proof.T1))
	tr.AppendMessage("T2", pointBytes(proof.T2))
	x := challengeScalar(tr, "x")

	tr.AppendMessage("taux", scalarBytes(proof.Taux))
	tr.AppendMessage("mu", scalarBytes(proof.Mu))
	tr.AppendMessage("that", scalarBytes(proof.That))
	w := challengeScalar(tr, "w")
	Q := pg.Gv.ScalarMul(w)

	// Condition 1: t(x) = t0 + t1 x + t2 x^2 is consistent with the
	// publicly committed value via the output commitment itself.
	z2 := z.Mul(z)
	x2 := x.Mul(x)
	lhs := pg.Gv.ScalarMul(proof.That).Add(pg.Gb.ScalarMul(proof.Taux))
	rhs := commitment.ScalarMul(z2).
		Add(pg.Gv.ScalarMul(delta(y, z))).
		Add(proof.T1.ScalarMul(x)).
		Add(proof.T2.ScalarMul(x2))
	if !lhs.Equal(rhs) {
		return ErrRangeProofFailed
	}

	// Condition 2: the committed bit-vectors open the inner-product
	// relation the prover claims.
	yN := powers(y, BitWidth)
	yInv := y.Inverse()
	yInvN := powers(yInv, BitWidth)
	twoN := powers(curve.ScalarFromUint64(2), BitWidth)

	hPrime := make([]curve.Point, BitWidth)
	for i := 0; i < BitWidth; i++ {
		hPrime[i] = bp.H[i].ScalarMul(yInvN[i])
	}

	negZ := z.Neg()
	gSum := curve.IdentityPoint()
	hSum := curve.IdentityPoint()
	for i := 0; i < BitWidth; i++ {
		gSum = gSum.Add(bp.G[i].ScalarMul(negZ))
		coeff := z.Mul(yN[i]).Add(z2.Mul(twoN[i]))
		hSum = hSum.Add(hPrime[i].ScalarMul(coeff))
	}

	P := proof.A.Add(proof.S.ScalarMul(x)).Add(gSum).Add(hSum).Add(pg.Gb.ScalarMul(proof.Mu.Neg()))
	P = P.Add(Q.ScalarMul(proof.That))

	if !ipaVerify(tr, append([]curve.Point(nil), bp.G[:]...), hPrime, Q, P, proof.L[:], proof.R[:], proof.AFinal, proof.BFinal) {
		return ErrRangeProofFailed
	}
	return nil
}

// delta(y,z) = (z - z^2)*<1,y^n> - z^3*<1,2^n>, the constant term that
// makes the aggregated t(x) identity check out.
func delta(y, z curve.Scalar) curve.Scalar {
	yN := powers(y, BitWidth)
	twoN := powers(curve.ScalarFromUint64(2), BitWidth)
	ones := make([]curve.Scalar, BitWidth)
	for i := range ones {
		ones[i] = curve.ScalarFromUint64(1)
	}
	sumY := innerProduct(ones, yN)
	sumTwo := innerProduct(ones, twoN)

	z2 := z.Mul(z)
	z3 := z2.Mul(z)
	term1 := z.Sub(z2).Mul(sumY)
	term2 := z3.Mul(sumTwo)
	return term1.Sub(term2)
}

func bitDecompose(v uint64) []curve.Scalar {
	out := make([]curve.Scalar, BitWidth)
	for i := 0; i < BitWidth; i++ {
		out[i] = curve.ScalarFromUint64((v >> uint(i)) & 1)
	}
	return out
}

func randomScalarVector(rng io.Reader, n int) ([]curve.Scalar, error) {
	out := make([]curve.Scalar, n)
	for i := range out {
		s, err := curve.RandomScalar(rng)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func powers(base curve.Scalar, n int) []curve.Scalar {
	out := make([]curve.Scalar, n)
	cur := curve.ScalarFromUint64(1)
	for i := 0; i < n; i++ {
		out[i] = cur
		cur = cur.Mul(base)
	}
	return out
}

func innerProduct(a, b []curve.Scalar) curve.Scalar {
	sum := curve.ZeroScalar()
	for i := range a {
		sum = sum.Add(a[i].Mul(b[i]))
	}
	return sum
}

func vectorCommit(g []curve.Point, a []curve.Scalar, h []curve.Point, b []curve.Scalar) curve.Point {
	acc := curve.IdentityPoint()
	for i := range a {
		acc = acc.Add(g[i].ScalarMul(a[i])).Add(h[i].ScalarMul(b[i]))
	}
	return acc
}

func pointBytes(p curve.Point) []byte {
	b := p.Bytes()
	return b[:]
}

func scalarBytes(s curve.Scalar) []byte {
	b := s.Bytes()
	return b[:]
}

func challengeScalar(tr *transcript.Transcript, label string) curve.Scalar {
	return curve.ScalarFromBytesReduce(tr.ChallengeBytes(label, 64))
}
