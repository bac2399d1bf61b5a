package hashsig

import "crypto/subtle"

// MerkleTree is a full binary tree over a power-of-two number of leaves,
// every internal node being hashNode(left, right). Layer 0 is the leaf
// layer, layer depth is the single-node root layer.
type MerkleTree struct {
	depth  uint8
	layers [][]Digest
}

// isPowerOfTwo reports whether n is a positive power of two.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func log2(n int) uint8 {
	var d uint8
	for n > 1 {
		n >>= 1
		d++
	}
	return d
}

// buildMerkleTree builds the full tree over leaves. len(leaves) must be
// a power of two; the degenerate case of a single leaf (q=1, depth 0)
// yields a one-layer tree whose root is that leaf.
// Callers within this package always pass a power-of-two leaf count
// derived from a depth parameter, so a violation here is a programmer
// error, not a data error, and panics.
func buildMerkleTree(leaves []Digest) *MerkleTree {
	if !isPowerOfTwo(len(leaves)) {
		panic("hashsig: leaf count is not a power of two")
	}
	depth := log2(len(leaves))
	layers := make([][]Digest, depth+1)
	layers[0] = leaves
	for l := uint8(0); l < depth; l++ {
		cur := layers[l]
		next := make([]Digest, len(cur)/2)
		parallelFor(len(next), func(k int) {
			next[k] = hashNode(cur[2*k], cur[2*k+1])
		})
		layers[l+1] = next
	}
	return &MerkleTree{depth: depth, layers: layers}
}

// Root returns the tree's single top-layer node.
func (t *MerkleTree) Root() Digest {
	return t.layers[t.depth][0]
}

// AuthPath returns the sibling digest at every layer on the path from
// leaf i to the root, layer 0 first. For a depth-0 tree (a single
// leaf) the path is empty.
func (t *MerkleTree) AuthPath(i uint32) []Digest {
	path := make([]Digest, t.depth)
	idx := i
	for l := uint8(0); l < t.depth; l++ {
		path[l] = t.layers[l][idx^1]
		idx >>= 1
	}
	return path
}

// verifyMerklePath recomputes the root from leaf, path and index and
// reports whether it matches root. The final comparison is constant
// time since the root is the one value in this whole scheme an
// attacker gets to probe repeatedly without detection.
func verifyMerklePath(leaf Digest, path []Digest, index uint32, root Digest) bool {
	cur := leaf
	idx := index
	for _, sibling := range path {
		if idx&1 == 0 {
			cur = hashNode(cur, sibling)
		} else {
			cur = hashNode(sibling, cur)
		}
		idx >>= 1
	}
	return subtle.ConstantTimeCompare(cur[:], root[:]) == 1
}
