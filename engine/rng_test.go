package engine

import "testing"

func TestRNG_Deterministic(t *testing.T) {
	rng1 := NewRNG(42)
	rng2 := NewRNG(42)

	for i := 0; i < 20; i++ {
		a := rng1.Intn(6)
		b := rng2.Intn(6)
		if a != b {
			t.Fatalf("call %d: got %d and %d from same seed", i, a, b)
		}
	}
}

func TestRNG_Intn_Range(t *testing.T) {
	rng := NewRNG(99)

	for i := 0; i < 1000; i++ {
		r := rng.Intn(6)
		if r < 0 || r > 5 {
			t.Fatalf("value out of range [0,5]: got %d", r)
		}
	}
}

func TestRNG_Intn_One(t *testing.T) {
	rng := NewRNG(1)

	for i := 0; i < 10; i++ {
		if r := rng.Intn(1); r != 0 {
			t.Fatalf("Intn(1) should always be 0, got %d", r)
		}
	}
}

func TestRNG_Position(t *testing.T) {
	rng := NewRNG(7)
	if rng.Position() != 0 {
		t.Fatalf("expected position 0, got %d", rng.Position())
	}
	for i := 0; i < 5; i++ {
		rng.Intn(2)
	}
	if rng.Position() != 5 {
		t.Errorf("expected position 5, got %d", rng.Position())
	}
}

func TestRestoreRNG(t *testing.T) {
	original := NewRNG(42)
	for i := 0; i < 10; i++ {
		original.Intn(100)
	}

	restored := RestoreRNG(42, original.Position())
	if restored.Position() != original.Position() {
		t.Fatalf("positions differ: %d vs %d", restored.Position(), original.Position())
	}
	for i := 0; i < 20; i++ {
		a := original.Intn(100)
		b := restored.Intn(100)
		if a != b {
			t.Fatalf("call %d after restore: got %d and %d", i, a, b)
		}
	}
}
