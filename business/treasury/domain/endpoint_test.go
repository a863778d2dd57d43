package domain

import "testing"

func TestNewPool_Empty(t *testing.T) {
	if _, err := NewPool(1, nil); err != ErrEmptyPool {
		t.Fatalf("err = %v, want ErrEmptyPool", err)
	}
}

func TestPool_Cycling(t *testing.T) {
	pool, err := NewPool(1, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}

	if got := pool.Current().URL; got != "a" {
		t.Errorf("first endpoint = %s, want a", got)
	}

	// Full cycle wraps back to the start.
	wants := []string{"b", "c", "a", "b"}
	for i, want := range wants {
		if got := pool.Advance().URL; got != want {
			t.Errorf("advance %d = %s, want %s", i, got, want)
		}
	}
}

func TestPool_Peek(t *testing.T) {
	pool, err := NewPool(1, []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}

	if got := pool.Peek(1).URL; got != "b" {
		t.Errorf("peek(1) = %s, want b", got)
	}
	// Peek does not move the cursor.
	if got := pool.Current().URL; got != "a" {
		t.Errorf("current after peek = %s, want a", got)
	}
	// Single-endpoint wrap: peeking past the end lands on the cursor again.
	pool.Advance()
	if got := pool.Peek(1).URL; got != "a" {
		t.Errorf("peek(1) after advance = %s, want a", got)
	}
}

func TestPool_ChainIDPropagated(t *testing.T) {
	pool, err := NewPool(1337, []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	if got := pool.Current().ChainID; got != 1337 {
		t.Errorf("chain id = %d, want 1337", got)
	}
}
