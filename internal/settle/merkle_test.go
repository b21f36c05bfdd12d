package settle

import "testing"

func leaf(b byte) Hash {
	var h Hash
	h[0] = b
	return h
}

func TestMerkleRootEmptyIsZeroHash(t *testing.T) {
	if root := MerkleRoot(nil); root != (Hash{}) {
		t.Fatalf("expected zero hash for empty leaves, got %x", root)
	}
}

func TestMerkleRootSingleLeafIsItself(t *testing.T) {
	l := leaf(1)
	if root := MerkleRoot([]Hash{l}); root != l {
		t.Fatalf("expected single-leaf root to equal the leaf, got %x want %x", root, l)
	}
}

func TestMerkleRootOrderIndependentPairing(t *testing.T) {
	a, b := leaf(1), leaf(2)
	r1 := MerkleRoot([]Hash{a, b})
	r2 := MerkleRoot([]Hash{b, a})
	if r1 != r2 {
		t.Fatalf("expected sorted-pair combination to be order independent: %x vs %x", r1, r2)
	}
}

func TestMerkleRootOddLeafPromotedUnchanged(t *testing.T) {
	a, b, c := leaf(1), leaf(2), leaf(3)
	root := MerkleRoot([]Hash{a, b, c})
	// c is promoted unchanged to the next level and combined with
	// combine(a, b); verify by hand.
	expected := combine(combine(a, b), c)
	if root != expected {
		t.Fatalf("unexpected odd-leaf root: got %x want %x", root, expected)
	}
}

func TestMerkleRootDeterministic(t *testing.T) {
	leaves := []Hash{leaf(1), leaf(2), leaf(3), leaf(4)}
	r1 := MerkleRoot(leaves)
	r2 := MerkleRoot(leaves)
	if r1 != r2 {
		t.Fatal("expected MerkleRoot to be deterministic over the same leaves")
	}
}
