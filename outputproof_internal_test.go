package ringct

import (
	"crypto/rand"
	"testing"

	"github.com/ccoin/ringct/pkg/curve"
	"github.com/ccoin/ringct/pkg/rangeproof"
	"github.com/ccoin/ringct/pkg/transcript"
)

func TestOutputProofBytesRoundTrip(t *testing.T) {
	pg := curve.DefaultPedersenGens()
	bpGens := rangeproof.DefaultGens()
	blinding, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	proof, commitment, err := rangeproof.ProveSingle(transcript.New([]byte(TranscriptLabel)), bpGens, pg, 5, blinding, rand.Reader)
	if err != nil {
		t.Fatalf("ProveSingle: %v", err)
	}
	pk, err := curve.RandomPoint(rand.Reader)
	if err != nil {
		t.Fatalf("RandomPoint: %v", err)
	}

	op := OutputProof{PublicKey: pk, Commitment: commitment, RangeProof: proof}
	encoded := op.Bytes()
	if len(encoded) != outputProofSize {
		t.Fatalf("encoded length = %d, want %d", len(encoded), outputProofSize)
	}

	decoded, err := outputProofFromBytes(encoded)
	if err != nil {
		t.Fatalf("outputProofFromBytes: %v", err)
	}
	if !decoded.PublicKey.Equal(op.PublicKey) || !decoded.Commitment.Equal(op.Commitment) {
		t.Error("decoded output proof does not match original")
	}
}

func TestOutputProofFromBytesRejectsWrongLength(t *testing.T) {
	if _, err := outputProofFromBytes([]byte{1, 2, 3}); err != ErrMalformedEncoding {
		t.Errorf("expected ErrMalformedEncoding, got %v", err)
	}
}

func TestGenMessageEmpty(t *testing.T) {
	msg := genMessage(nil, nil, nil, nil)
	if len(msg) != 0 {
		t.Errorf("expected empty message for empty inputs, got %d bytes", len(msg))
	}
}
