package ringct

import "errors"

// Sentinel errors returned by the assembler and the verifier. Callers
// should compare with errors.Is; wrapped context is added with fmt.Errorf
// and "%w" where a failure needs to name the offending input or output.
var (
	// ErrNoInputs is returned by Sign when the material has no inputs.
	ErrNoInputs = errors.New("ringct: material has no inputs")
	// ErrNoOutputs is returned by Sign when the material has no outputs.
	ErrNoOutputs = errors.New("ringct: material has no outputs")
	// ErrTransactionMustHaveAnInput is returned by Verify on a transaction
	// with zero mlsags.
	ErrTransactionMustHaveAnInput = errors.New("ringct: transaction must have an input")
	// ErrInvalidSignature is returned by Verify when any MLSAG fails to
	// verify against its ring's public commitments.
	ErrInvalidSignature = errors.New("ringct: invalid mlsag signature")
	// ErrRangeProofFailure is returned when a range proof fails, at
	// signing (should not happen for in-range values) or verification.
	ErrRangeProofFailure = errors.New("ringct: range proof failure")
	// ErrKeyImageNotUniqueAcrossInputs is returned by Verify when two
	// inputs share a key image.
	ErrKeyImageNotUniqueAcrossInputs = errors.New("ringct: key image not unique across inputs")
	// ErrPublicKeyNotUniqueAcrossInputs is returned by Verify when a
	// public key appears more than once across all flattened rings.
	ErrPublicKeyNotUniqueAcrossInputs = errors.New("ringct: public key not unique across inputs")
	// ErrCommitmentsDoNotBalance is returned by Verify when the sum of
	// pseudo-commitments does not equal the sum of output commitments.
	ErrCommitmentsDoNotBalance = errors.New("ringct: commitments do not balance")
	// ErrMalformedEncoding is returned by decoders that cannot parse a
	// point or a proof from a byte slice.
	ErrMalformedEncoding = errors.New("ringct: malformed encoding")
)
