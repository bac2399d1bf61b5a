package hashsig

import "testing"

func TestPRGDeterministic(t *testing.T) {
	var seed Digest
	for i := range seed {
		seed[i] = byte(i * 7)
	}

	a := NewPRG(seed)
	b := NewPRG(seed)
	for i := 0; i < 8; i++ {
		x, y := a.Next(), b.Next()
		if x != y {
			t.Fatalf("block %d: two PRGs from the same seed diverged", i)
		}
	}
}

func TestPRGDiffersBySeed(t *testing.T) {
	var seedA, seedB Digest
	seedB[0] = 1

	a := NewPRG(seedA).Next()
	b := NewPRG(seedB).Next()
	if a == b {
		t.Fatalf("PRGs from different seeds produced the same first block")
	}
}

func TestPRGStreamAdvances(t *testing.T) {
	var seed Digest
	p := NewPRG(seed)
	blocks := make(map[Digest]bool)
	for i := 0; i < 16; i++ {
		d := p.Next()
		if blocks[d] {
			t.Fatalf("PRG repeated a block within the first 16")
		}
		blocks[d] = true
	}
}
