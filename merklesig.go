package hashsig

import "sync"

// MerklePublicKey is the public half of a two-level scheme: the outer
// q-indexed key's root and the two depths needed to size a signature.
type MerklePublicKey struct {
	Root Digest
	DTop uint8
	DBot uint8
}

// MerkleSignature is (outer_index, inner_public_key, inner_sig,
// outer_sig). The outer index is carried inside TopSig.
type MerkleSignature struct {
	BotSig    QSignature
	BotPublic QPublicKey
	TopSig    QSignature
}

// TopIndex is the outer leaf index this signature was produced at.
func (sig *MerkleSignature) TopIndex() uint32 {
	return sig.TopSig.Index
}

// MerkleKeyPair is the in-memory half of a two-level private key: the
// outer q-indexed key plus a cache of derived inner subkeys. It does
// not itself track which outer index to use next or persist anything
// -- that is Signer's job (signer.go), so MerkleKeyPair can be
// exercised directly in tests without any filesystem state.
type MerkleKeyPair struct {
	masterSeed Digest
	dTop, dBot uint8
	top        *QPrivateKey

	mu        sync.Mutex
	innerKeys map[uint32]*QPrivateKey
}

// innerSeedDomain distinguishes inner subkey seeds from the outer
// key's own OTS child seeds, both of which are ultimately derived from
// the same master seed.
const innerSeedDomain = "inner"

func deriveInnerSeed(masterSeed Digest, outerIndex uint32) Digest {
	return hashWithDomain(domainChildSeed, masterSeed[:], []byte(innerSeedDomain), le32(outerIndex))
}

// NewMerkleKeyPair derives the outer q-indexed key (an expensive
// operation: 2^dTop OTS key-pair generations) and returns a key pair
// ready to sign, plus its public key.
func NewMerkleKeyPair(masterSeed Digest, dTop, dBot uint8) (*MerkleKeyPair, *MerklePublicKey) {
	top, topPub := GenerateQKeyPair(masterSeed, dTop)
	kp := &MerkleKeyPair{
		masterSeed: masterSeed,
		dTop:       dTop,
		dBot:       dBot,
		top:        top,
		innerKeys:  make(map[uint32]*QPrivateKey),
	}
	return kp, &MerklePublicKey{Root: topPub.Root, DTop: dTop, DBot: dBot}
}

// LeafBudget is the number of distinct outer indices this key pair can
// ever sign with, 2^dTop.
func (kp *MerkleKeyPair) LeafBudget() uint64 {
	return uint64(1) << kp.dTop
}

// innerKeyFor returns the (cached) inner q-indexed subkey for an outer
// index, deriving and caching it on first use. Subkeys are never
// persisted: a crash loses the cache, not any secret, since every
// subkey is a pure deterministic function of the master seed.
func (kp *MerkleKeyPair) innerKeyFor(outerIndex uint32) *QPrivateKey {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	if k, ok := kp.innerKeys[outerIndex]; ok {
		return k
	}
	seed := deriveInnerSeed(kp.masterSeed, outerIndex)
	k, _ := GenerateQKeyPair(seed, kp.dBot)
	kp.innerKeys[outerIndex] = k
	return k
}

// innerIndexFor picks the inner leaf for (outerIndex, d_msg): a
// hash-derived pseudo-random choice rather than a counter, so two
// different messages signed under the
// same outer index (which never happens through Signer.Sign, but is
// meaningful for SignAt used directly in tests) land on the same inner
// leaf with probability 2^-dBot.
func innerIndexFor(outerIndex uint32, dMsg Digest, dBot uint8) uint32 {
	d := hashWithDomain(domainInnerIndex, le32(outerIndex), dMsg[:])
	var v uint32
	for i := 0; i < 4; i++ {
		v = v<<8 | uint32(d[i])
	}
	return v & ((1 << dBot) - 1)
}

// SignAt produces a two-level signature on dMsg using outer leaf
// outerIndex. It is the caller's responsibility to never reuse an
// outer index across calls -- Signer.Sign (signer.go) enforces that
// via a persisted monotonic counter.
func (kp *MerkleKeyPair) SignAt(outerIndex uint32, dMsg Digest) *MerkleSignature {
	inner := kp.innerKeyFor(outerIndex)
	innerIndex := innerIndexFor(outerIndex, dMsg, kp.dBot)
	botSig := inner.SignAt(innerIndex, dMsg)
	botPub := inner.PublicKey()

	leafMsg := hashWithDomain(domainLeaf, botPub.MarshalBinary())
	topSig := kp.top.SignAt(outerIndex, leafMsg)

	return &MerkleSignature{BotSig: *botSig, BotPublic: *botPub, TopSig: *topSig}
}

// MerkleVerify checks a two-level signature against pk and the signed
// message. It recomputes d_msg, verifies the inner signature against
// the embedded inner public key, then verifies the outer signature
// against pk's root and the hash of that inner public key.
func MerkleVerify(pk *MerklePublicKey, msg []byte, sig *MerkleSignature) bool {
	if sig.BotPublic.Depth != pk.DBot || uint8(len(sig.TopSig.Path)) != pk.DTop {
		return false
	}
	dMsg := hash(msg)
	if !QVerify(&sig.BotPublic, dMsg, &sig.BotSig) {
		return false
	}
	leafMsg := hashWithDomain(domainLeaf, sig.BotPublic.MarshalBinary())
	topPub := &QPublicKey{Root: pk.Root, Depth: pk.DTop}
	return QVerify(topPub, leafMsg, &sig.TopSig)
}
