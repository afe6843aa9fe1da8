package rangeproof

import (
	"github.com/ccoin/ringct/pkg/curve"
	"github.com/ccoin/ringct/pkg/transcript"
)

// ipaProve runs the logarithmic-round inner-product compression (Bootle et
// al.; Bulletproofs §3) proving knowledge of l, r such that
// Σ G[i]*l[i] + Σ H[i]*r[i] + <l,r>*Q equals the point the verifier will
// reconstruct independently, without revealing l or r. G, H, l, r are
// consumed (folded in place) and must all share the same starting length,
// a power of two.
func ipaProve(tr *transcript.Transcript, g, h []curve.Point, q curve.Point, l, r []curve.Scalar) (Ls, Rs []curve.Point, aFinal, bFinal curve.Scalar) {
	n := len(l)
	for n > 1 {
		half := n / 2
		lLo, lHi := l[:half], l[half:]
		rLo, rHi := r[:half], r[half:]
		gLo, gHi := g[:half], g[half:]
		hLo, hHi := h[:half], h[half:]

		cL := innerProduct(lLo, rHi)
		cR := innerProduct(lHi, rLo)

		L := vectorCommit(gHi, lLo, hLo, rHi).Add(q.ScalarMul(cL))
		R := vectorCommit(gLo, lHi, hHi, rLo).Add(q.ScalarMul(cR))

		tr.AppendMessage("L", pointBytes(L))
		tr.AppendMessage("R", pointBytes(R))
		u := challengeScalar(tr, "u")
		uInv := u.Inverse()

		newL := make([]curve.Scalar, half)
		newR := make([]curve.Scalar, half)
		newG := make([]curve.Point, half)
		newH := make([]curve.Point, half)
		for i := 0; i < half; i++ {
			newL[i] = lLo[i].Mul(u).Add(lHi[i].Mul(uInv))
			newR[i] = rLo[i].Mul(uInv).Add(rHi[i].Mul(u))
			newG[i] = gLo[i].ScalarMul(uInv).Add(gHi[i].ScalarMul(u))
			newH[i] = hLo[i].ScalarMul(u).Add(hHi[i].ScalarMul(uInv))
		}

		Ls = append(Ls, L)
		Rs = append(Rs, R)
		l, r, g, h = newL, newR, newG, newH
		n = half
	}
	return Ls, Rs, l[0], r[0]
}

// ipaVerify replays the same transcript operations as ipaProve and checks
// the final folded relation holds against the publicly reconstructed
// commitment point p.
func ipaVerify(tr *transcript.Transcript, g, h []curve.Point, q, p curve.Point, ls, rs []curve.Point, aFinal, bFinal curve.Scalar) bool {
	n := len(g)
	for k := 0; k < len(ls); k++ {
		half := n / 2
		gLo, gHi := g[:half], g[half:]
		hLo, hHi := h[:half], h[half:]

		tr.AppendMessage("L", pointBytes(ls[k]))
		tr.AppendMessage("R", pointBytes(rs[k]))
		u := challengeScalar(tr, "u")
		uInv := u.Inverse()

		newG := make([]curve.Point, half)
		newH := make([]curve.Point, half)
		for i := 0; i < half; i++ {
			newG[i] = gLo[i].ScalarMul(uInv).Add(gHi[i].ScalarMul(u))
			newH[i] = hLo[i].ScalarMul(u).Add(hHi[i].ScalarMul(uInv))
		}
		u2 := u.Mul(u)
		u2Inv := uInv.Mul(uInv)
		p = ls[k].ScalarMul(u2).Add(p).Add(rs[k].ScalarMul(u2Inv))

		g, h = newG, newH
		n = half
	}
	if n != 1 {
		return false
	}
	want := g[0].ScalarMul(aFinal).Add(h[0].ScalarMul(bFinal)).Add(q.ScalarMul(aFinal.Mul(bFinal)))
	return p.Equal(want)
}
