package mathx

import "testing"

func TestFloorDivAndMod(t *testing.T) {
	cases := []struct {
		a, b, q, m int
	}{
		{0, 34, 0, 0},
		{33, 34, 0, 33},
		{34, 34, 1, 0},
		{-1, 34, -1, 33},
		{-34, 34, -1, 0},
		{-35, 34, -2, 33},
	}
	for _, c := range cases {
		if got := FloorDiv(c.a, c.b); got != c.q {
			t.Fatalf("FloorDiv(%d,%d): got %d want %d", c.a, c.b, got, c.q)
		}
		if got := Mod(c.a, c.b); got != c.m {
			t.Fatalf("Mod(%d,%d): got %d want %d", c.a, c.b, got, c.m)
		}
	}
}

func TestHash2Deterministic(t *testing.T) {
	if Hash2(7, -3, 9) != Hash2(7, -3, 9) {
		t.Fatalf("hash not deterministic")
	}
	if Hash2(7, -3, 9) == Hash2(8, -3, 9) {
		t.Fatalf("expected seed to change hash")
	}
}

func TestMaxAbs(t *testing.T) {
	if got := MaxAbs(-5, 3); got != 5 {
		t.Fatalf("got %d want 5", got)
	}
}
