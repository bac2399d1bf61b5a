package hashsig

// OTSBits is the width in bits of the digest a Lamport key signs: one
// secret/public pair per bit position
const OTSBits = N * 8

// OTSPrivateKey holds, for each of the OTSBits bit positions, a pair of
// 32-byte secrets -- one to reveal if the corresponding message bit is
// 0, one if it is 1. A private key must be used to sign at most once.
type OTSPrivateKey struct {
	S [OTSBits][2]Digest
}

// OTSPublicKey is Hash applied to every secret in the matching private
// key.
type OTSPublicKey struct {
	P [OTSBits][2]Digest
}

// OTSSignature reveals exactly one secret per bit position: the one
// matching the signed digest's bit at that position.
type OTSSignature struct {
	S [OTSBits]Digest
}

// GenerateOTSKeyPair expands seed into a full private key via the
// seeded PRG, then derives the matching public key.
func GenerateOTSKeyPair(seed Digest) (*OTSPrivateKey, *OTSPublicKey) {
	prg := NewPRG(seed)
	sk := new(OTSPrivateKey)
	for j := 0; j < OTSBits; j++ {
		sk.S[j][0] = prg.Next()
		sk.S[j][1] = prg.Next()
	}
	return sk, sk.PublicKey()
}

// PublicKey derives the public key from sk by hashing every secret.
// The OTSBits*2 hash calls are independent, so this fans out across
// the worker pool.
func (sk *OTSPrivateKey) PublicKey() *OTSPublicKey {
	pk := new(OTSPublicKey)
	parallelFor(OTSBits, func(j int) {
		pk.P[j][0] = hash(sk.S[j][0][:])
		pk.P[j][1] = hash(sk.S[j][1][:])
	})
	return pk
}

// bitAt returns bit j of d, counting from the most significant bit of
// d[0].
func bitAt(d Digest, j int) int {
	byteIdx := j / 8
	bitIdx := uint(7 - j%8)
	return int((d[byteIdx] >> bitIdx) & 1)
}

// Sign reveals one secret per bit position of d. A given OTSPrivateKey
// must never sign two different digests: doing so leaks enough secret
// material to forge signatures on arbitrary messages. This package
// enforces single-use in Signer, through its persisted outer-index
// counter, not here.
func (sk *OTSPrivateKey) Sign(d Digest) *OTSSignature {
	sig := new(OTSSignature)
	for j := 0; j < OTSBits; j++ {
		sig.S[j] = sk.S[j][bitAt(d, j)]
	}
	return sig
}

// Verify checks that every revealed secret hashes to the public value
// recorded for d's bit at that position.
func (pk *OTSPublicKey) Verify(d Digest, sig *OTSSignature) bool {
	ok := true
	mismatches := make([]bool, OTSBits)
	parallelFor(OTSBits, func(j int) {
		bit := bitAt(d, j)
		mismatches[j] = hash(sig.S[j][:]) != pk.P[j][bit]
	})
	for _, mismatch := range mismatches {
		if mismatch {
			ok = false
		}
	}
	return ok
}
