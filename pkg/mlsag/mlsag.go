// Package mlsag implements a dual-key linkable ring signature satisfying
// the root package's MlsagMaterial / MlsagSignature contracts. It is the
// Go-native analogue of Monero's MLSAG: each ring position carries a spend
// public key (row 1, exposing a key image for double-spend detection) and
// a commitment-difference point (row 2, proving the signer's
// pseudo-commitment opens the same value as the spent output, without
// revealing which ring position is real).
//
// No sibling module providing this primitive was retrieved alongside
// original_source/src/ringct.rs, so this is a from-scratch implementation
// grounded in the standard CryptoNote/Monero MLSAG construction and in the
// TrueInput/DecoyInput field shapes of the original source (see
// DESIGN.md, "pkg/mlsag" entry).
package mlsag

import (
	"errors"
	"io"

	ringct "github.com/ccoin/ringct"
	"github.com/ccoin/ringct/pkg/curve"
)

// ErrRingTooShort is returned when constructing material with no decoys
// at all (a ring holding only the true key can hide nothing).
var ErrRingTooShort = errors.New("mlsag: ring must have at least one member")

// ErrRingSizeMismatch is returned by Verify when the caller's supplied
// public-commitment list does not match the signature's ring size.
var ErrRingSizeMismatch = errors.New("mlsag: public commitment count does not match ring size")

// ErrVerificationFailed is returned by Verify when the ring does not
// close under the supplied message and commitments.
var ErrVerificationFailed = errors.New("mlsag: ring signature verification failed")

// DecoyInput is one non-spent ring member: a spend public key and the
// public commitment for the output it stands in for.
type DecoyInput struct {
	PublicKey  curve.Point
	Commitment curve.Point
}

// Material is one input's full signing bundle: a ring of spend keys and
// commitments, with the true signer's secret key and commitment opening
// at a randomly chosen position. It implements ringct.MlsagMaterial.
//
// ringct.MlsagMaterial.Sign takes no rng parameter of its own, so Material
// retains the io.Reader it was constructed with and reuses it for the
// per-signing randomness Sign needs (the ring's decoy responses and the
// true row's nonces) — the same explicit, caller-supplied source, never
// ambient crypto/rand.
type Material struct {
	keys        []curve.Point
	commitments []curve.Point
	secretIndex int
	secretKey   curve.Scalar
	blinding    curve.Scalar
	amount      ringct.Amount
	rng         io.Reader
}

// New builds signing material for one input: the true spender's secret
// key, the blinding and amount opening their commitment, and the decoy
// ring members supplied by the caller. Choosing which decoys to use is
// the caller's concern, not this package's; the true entry is spliced
// into the ring at a position chosen uniformly at random from rng.
func New(rng io.Reader, secretKey, blinding curve.Scalar, amount ringct.Amount, decoys []DecoyInput) (*Material, error) {
	if len(decoys) == 0 {
		return nil, ErrRingTooShort
	}
	pg := curve.DefaultPedersenGens()
	truePublicKey := pg.Gb.ScalarMul(secretKey)
	trueCommitment := ringct.RevealedCommitment{Value: amount, Blinding: blinding}.Commit(pg)

	n := len(decoys) + 1
	secretIndex, err := randomIndex(rng, n)
	if err != nil {
		return nil, err
	}

	keys := make([]curve.Point, n)
	commitments := make([]curve.Point, n)
	j := 0
	for i := 0; i < n; i++ {
		if i == secretIndex {
			keys[i] = truePublicKey
			commitments[i] = trueCommitment
			continue
		}
		keys[i] = decoys[j].PublicKey
		commitments[i] = decoys[j].Commitment
		j++
	}

	return &Material{
		keys:        keys,
		commitments: commitments,
		secretIndex: secretIndex,
		secretKey:   secretKey,
		blinding:    blinding,
		amount:      amount,
		rng:         rng,
	}, nil
}

// PublicKeys returns the full ring in order.
func (m *Material) PublicKeys() []curve.Point {
	return append([]curve.Point(nil), m.keys...)
}

// KeyImage returns secretKey * Hp(truePublicKey), the deterministic
// double-spend tag.
func (m *Material) KeyImage() curve.Point {
	hp := curve.HashToPoint(pointBytes(m.keys[m.secretIndex]))
	return hp.ScalarMul(m.secretKey)
}

// RandomPseudoCommitment commits to this input's true amount with a fresh
// blinding factor drawn from rng.
func (m *Material) RandomPseudoCommitment(rng io.Reader) (ringct.RevealedCommitment, error) {
	return ringct.NewRevealedCommitment(m.amount, rng)
}

// Sign produces a Signature over msg, binding it to pseudoCommitment.
// Callers must have already randomized pseudoCommitment via
// RandomPseudoCommitment for this same input.
func (m *Material) Sign(msg []byte, pseudoCommitment ringct.RevealedCommitment, pg curve.PedersenGens) (ringct.MlsagSignature, error) {
	n := len(m.keys)
	pi := m.secretIndex
	pseudoPoint := pseudoCommitment.Commit(pg)

	diffs := make([]curve.Point, n)
	for i := range diffs {
		diffs[i] = m.commitments[i].Add(pseudoPoint.Neg())
	}

	keyImage := curve.HashToPoint(pointBytes(m.keys[pi])).ScalarMul(m.secretKey)
	z := m.blinding.Sub(pseudoCommitment.Blinding)

	alpha1, err := curve.RandomScalar(m.rng)
	if err != nil {
		return nil, err
	}
	alpha2, err := curve.RandomScalar(m.rng)
	if err != nil {
		return nil, err
	}

	c := make([]curve.Scalar, n)
	s1 := make([]curve.Scalar, n)
	s2 := make([]curve.Scalar, n)

	hpPi := curve.HashToPoint(pointBytes(m.keys[pi]))
	lPi1 := pg.Gb.ScalarMul(alpha1)
	rPi1 := hpPi.ScalarMul(alpha1)
	lPi2 := pg.Gb.ScalarMul(alpha2)

	start := (pi + 1) % n
	c[start] = ringChallenge(msg, lPi1, rPi1, lPi2)

	for step := 1; step < n; step++ {
		i := (pi + step) % n
		si1, err := curve.RandomScalar(m.rng)
		if err != nil {
			return nil, err
		}
		si2, err := curve.RandomScalar(m.rng)
		if err != nil {
			return nil, err
		}
		s1[i], s2[i] = si1, si2

		hpI := curve.HashToPoint(pointBytes(m.keys[i]))
		li1 := pg.Gb.ScalarMul(si1).Add(m.keys[i].ScalarMul(c[i]))
		ri1 := hpI.ScalarMul(si1).Add(keyImage.ScalarMul(c[i]))
		li2 := pg.Gb.ScalarMul(si2).Add(diffs[i].ScalarMul(c[i]))

		next := (i + 1) % n
		c[next] = ringChallenge(msg, li1, ri1, li2)
	}

	s1[pi] = alpha1.Sub(c[pi].Mul(m.secretKey))
	s2[pi] = alpha2.Sub(c[pi].Mul(z))

	return &Signature{
		keys:             append([]curve.Point(nil), m.keys...),
		keyImage:         keyImage,
		pseudoCommitment: pseudoPoint,
		c0:               c[0],
		s1:               s1,
		s2:               s2,
	}, nil
}

func randomIndex(rng io.Reader, n int) (int, error) {
	if n <= 0 {
		return 0, ErrRingTooShort
	}
	var b [8]byte
	if _, err := io.ReadFull(rng, b[:]); err != nil {
		return 0, err
	}
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return int(v % uint64(n)), nil
}

func pointBytes(p curve.Point) []byte {
	b := p.Bytes()
	return b[:]
}
