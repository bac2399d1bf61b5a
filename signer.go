package hashsig

import "sync"

// Signer is the stateful, file-backed half of the two-level scheme: it
// owns a locked PrivateKeyContainer and the in-memory key-pair derived
// from it, and serializes every Sign() call against the container's
// persisted counter. The signer's state is the one piece of global
// mutable state in this package, and it lives entirely in the
// private-key file.
type Signer struct {
	kp  *MerkleKeyPair
	pk  *MerklePublicKey
	ctr PrivateKeyContainer

	mu sync.Mutex
}

// NewSigner builds a Signer from an already-open, already-locked
// container. Deriving the key pair rebuilds the outer Merkle tree
// (2^DepthTop OTS key-pair generations), so this is the expensive step
// of opening a signer, not ctr's Open/Create calls.
func NewSigner(ctr PrivateKeyContainer) *Signer {
	kp, pk := NewMerkleKeyPair(ctr.Seed(), ctr.DepthTop(), ctr.DepthBot())
	return &Signer{kp: kp, pk: pk, ctr: ctr}
}

// PublicKey returns the signer's public key.
func (s *Signer) PublicKey() *MerklePublicKey {
	return s.pk
}

// Sign reserves the next outer leaf index (persisting the
// incremented counter before doing anything else), then signs msg
// with it. If the key's leaf budget is exhausted, it returns a
// KindLeafBudgetExhausted error and never touches the key material.
func (s *Signer) Sign(msg []byte) (*MerkleSignature, Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	outerIndex, err := s.ctr.ReserveNextIndex(s.kp.LeafBudget())
	if err != nil {
		return nil, err
	}
	return s.kp.SignAt(uint32(outerIndex), hash(msg)), nil
}

// Close releases the signer's lock on its container.
func (s *Signer) Close() Error {
	return s.ctr.Close()
}

// VerifyResult is the four-way outcome of the verifier binding,
// shared by the CLI and the browser binding.
type VerifyResult string

const (
	ResultValid               VerifyResult = "valid"
	ResultInvalidSignature    VerifyResult = "invalid_signature"
	ResultCantParseSignature  VerifyResult = "cant_parse_signature"
	ResultInvalidPublicKey    VerifyResult = "invalid_public_key"
)

// VerifyFile implements the verifier binding contract: given the
// signed file's bytes, a canonically-encoded signature, and a 64-hex
// public key, it returns exactly one of the four VerifyResult values
// and never panics or returns a Go error -- every failure mode is a
// value in the result.
func VerifyFile(fileBytes, sigBytes []byte, pkHex string) VerifyResult {
	root, perr := DecodePublicKeyHex(pkHex)
	if perr != nil {
		return ResultInvalidPublicKey
	}

	sig, serr := UnmarshalMerkleSignature(sigBytes)
	if serr != nil {
		return ResultCantParseSignature
	}

	pk := &MerklePublicKey{Root: root, DTop: uint8(len(sig.TopSig.Path)), DBot: sig.BotPublic.Depth}
	if !MerkleVerify(pk, fileBytes, sig) {
		return ResultInvalidSignature
	}
	return ResultValid
}
