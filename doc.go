// Package hashsig implements a stateful, hash-based post-quantum digital
// signature scheme: plain Lamport one-time signatures authenticated by a
// two-level Merkle tree (an outer q-indexed key whose leaves are, in turn,
// the roots of on-demand inner q-indexed subkeys).
package hashsig
