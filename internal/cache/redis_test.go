package cache

import "testing"

func TestQueryHash(t *testing.T) {
	t.Parallel()

	h1 := QueryHash("Daft Punk - One More Time")
	h2 := QueryHash("Daft Punk - One More Time")
	h3 := QueryHash("ODESZA - A Moment Apart")

	if len(h1) != 12 {
		t.Errorf("QueryHash length = %d, want 12", len(h1))
	}
	if h1 != h2 {
		t.Error("QueryHash should be deterministic")
	}
	if h1 == h3 {
		t.Error("different queries should hash differently")
	}
}
