package curve

import "sync"

// PedersenGens is the fixed pair of independent generators (G_v, G_b) that
// every Pedersen commitment in the engine is built from: value*Gv +
// blinding*Gb. Independence between Gv and Gb is what makes the
// commitment hiding and binding at once.
//
// Spend public keys share G_b with the blinding term rather than using a
// third generator: a spend key x*Gb and a commitment's blinding term
// b*Gb live on the same base point, which is what lets an MLSAG ring
// signature prove knowledge of x and knowledge of a commitment's opening
// with the same machinery (see DESIGN.md, "pkg/curve" entry).
type PedersenGens struct {
	Gv Point
	Gb Point
}

var (
	pedersenGensOnce sync.Once
	pedersenGens     PedersenGens
)

// DefaultPedersenGens returns the process-wide generator pair, deriving it
// once and caching the result. The derivation is a pure hash-to-curve with
// no side effects; sync.Once only guards against recomputing it on every
// call.
func DefaultPedersenGens() PedersenGens {
	pedersenGensOnce.Do(func() {
		pedersenGens = PedersenGens{
			Gv: HashToPoint([]byte("BLST_RINGCT_GENERATOR_GV")),
			Gb: HashToPoint([]byte("BLST_RINGCT_GENERATOR_GB")),
		}
	})
	return pedersenGens
}
