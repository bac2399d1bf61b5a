package hashsig

import "golang.org/x/crypto/chacha20"

// PRG is a deterministic byte stream keyed by a 32-byte seed, used to
// expand a q-indexed key's child seeds into Lamport OTS secret-key
// material. Two PRGs built from the same seed always produce the same
// stream.
type PRG struct {
	cipher *chacha20.Cipher
}

// NewPRG keys a fresh stream cipher from seed. The nonce is fixed at
// zero: seeds are never reused across distinct PRG instances (each
// child seed is itself the output of a domain-separated hash), so a
// fixed nonce does not cause keystream reuse.
func NewPRG(seed Digest) *PRG {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		// Only returns an error for a wrong-sized key, and seed is
		// always exactly N==chacha20.KeySize bytes.
		panic("hashsig: chacha20 init: " + err.Error())
	}
	return &PRG{cipher: c}
}

// Next returns the next N bytes of the stream as a Digest.
func (p *PRG) Next() Digest {
	var out Digest
	p.cipher.XORKeyStream(out[:], out[:])
	return out
}
