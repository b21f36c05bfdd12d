// Package settle accumulates completed hands per room, flushes them
// in batches with a keccak-256 Merkle commitment over the action log,
// and publishes the result to Kafka for downstream persistence.
package settle

import "golang.org/x/crypto/sha3"

// HashSize is the keccak-256 digest length in bytes.
const HashSize = 32

// Hash is a 32-byte keccak-256 digest.
type Hash [HashSize]byte

func keccak256(data []byte) Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// MerkleRoot computes the root over leaves, pairing adjacent hashes
// as H(min(a,b) || max(a,b)) and promoting an odd leaf unchanged to
// the next level. The root of a single leaf is the leaf itself; the
// root of zero leaves is the zero hash.
func MerkleRoot(leaves []Hash) Hash {
	if len(leaves) == 0 {
		return Hash{}
	}
	level := append([]Hash(nil), leaves...)
	for len(level) > 1 {
		next := make([]Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, combine(level[i], level[i+1]))
		}
		level = next
	}
	return level[0]
}

func combine(a, b Hash) Hash {
	lo, hi := a, b
	if bytesGreater(a[:], b[:]) {
		lo, hi = b, a
	}
	buf := make([]byte, 0, 2*HashSize)
	buf = append(buf, lo[:]...)
	buf = append(buf, hi[:]...)
	return keccak256(buf)
}

func bytesGreater(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}
