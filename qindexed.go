package hashsig

import "sync"

// QPrivateKey is a q-indexed private key: depth d, 2^d one-time Lamport
// keys derived deterministically from a single seed, authenticated by
// one Merkle root over Hash(serialize(ots_public_key_i)).
// Its own Merkle tree is expensive to build (2^d OTS key-pair
// generations), so it is built once, lazily, and cached.
type QPrivateKey struct {
	seed  Digest
	depth uint8

	mu   sync.Mutex
	tree *MerkleTree
}

// QPublicKey is the root and depth of a q-indexed key.
type QPublicKey struct {
	Root  Digest
	Depth uint8
}

// QSignature is (i, P_i, ots_sig, path): the index signed, the full OTS
// public key at that index (since it cannot be reconstructed from the
// signature alone), the OTS signature, and the Merkle inclusion path.
type QSignature struct {
	Index     uint32
	PublicKey OTSPublicKey
	OTSSig    OTSSignature
	Path      []Digest
}

func (sk *QPrivateKey) leafAt(i uint32) Digest {
	_, pk := GenerateOTSKeyPair(deriveChildSeed(sk.seed, i))
	return hashWithDomain(domainLeaf, pk.MarshalBinary())
}

func (sk *QPrivateKey) ensureTree() *MerkleTree {
	sk.mu.Lock()
	defer sk.mu.Unlock()
	if sk.tree != nil {
		return sk.tree
	}
	q := 1 << sk.depth
	leaves := make([]Digest, q)
	parallelFor(q, func(i int) {
		leaves[i] = sk.leafAt(uint32(i))
	})
	sk.tree = buildMerkleTree(leaves)
	return sk.tree
}

// GenerateQKeyPair derives a full q-indexed key pair of the given depth
// from seed. Depth must be small enough that 1<<depth leaf generations
// are tractable; the CLI and profile registry are the only callers
// that pick depth, and they keep it well within range.
func GenerateQKeyPair(seed Digest, depth uint8) (*QPrivateKey, *QPublicKey) {
	sk := &QPrivateKey{seed: seed, depth: depth}
	tree := sk.ensureTree()
	return sk, &QPublicKey{Root: tree.Root(), Depth: depth}
}

// PublicKey returns sk's public key, building its tree if this is the
// first call.
func (sk *QPrivateKey) PublicKey() *QPublicKey {
	tree := sk.ensureTree()
	return &QPublicKey{Root: tree.Root(), Depth: sk.depth}
}

// SignAt produces a q-indexed signature on d using the OTS key at
// index i. Callers must never invoke SignAt twice with the same i: a
// q-indexed key is a batch of one-time keys, not a reusable one. This
// package's only caller is the two-level scheme in merklesig.go, driven
// by Signer (signer.go), which enforces that via its persisted,
// monotonically increasing outer-index counter.
func (sk *QPrivateKey) SignAt(i uint32, d Digest) *QSignature {
	if i >= 1<<sk.depth {
		panic("hashsig: q-indexed index out of range")
	}
	tree := sk.ensureTree()
	otsSk, otsPk := GenerateOTSKeyPair(deriveChildSeed(sk.seed, i))
	return &QSignature{
		Index:     i,
		PublicKey: *otsPk,
		OTSSig:    *otsSk.Sign(d),
		Path:      tree.AuthPath(i),
	}
}

// QVerify checks a q-indexed signature against pk and the signed
// digest d.
func QVerify(pk *QPublicKey, d Digest, sig *QSignature) bool {
	if uint8(len(sig.Path)) != pk.Depth {
		return false
	}
	if !sig.PublicKey.Verify(d, &sig.OTSSig) {
		return false
	}
	leaf := hashWithDomain(domainLeaf, sig.PublicKey.MarshalBinary())
	return verifyMerklePath(leaf, sig.Path, sig.Index, pk.Root)
}
