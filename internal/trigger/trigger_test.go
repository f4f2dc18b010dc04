package trigger

import "testing"

func TestButtonCapturesEdgesInOrder(t *testing.T) {
	b := NewButton()
	b.Press()
	b.Release()
	b.Press()

	edges := b.Poll()
	if len(edges) != 3 {
		t.Fatalf("got %d edges, want 3", len(edges))
	}
	want := []bool{true, false, true}
	for i, edge := range edges {
		if edge.Down != want[i] {
			t.Fatalf("edge %d down = %v, want %v", i, edge.Down, want[i])
		}
		if edge.At.IsZero() {
			t.Fatalf("edge %d has no timestamp", i)
		}
	}
}

func TestButtonDeduplicatesRepeatedState(t *testing.T) {
	b := NewButton()
	b.Press()
	b.Press()
	b.Press()
	b.Release()
	b.Release()

	edges := b.Poll()
	if len(edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(edges))
	}
	if !edges[0].Down || edges[1].Down {
		t.Fatalf("edges = %+v, want down then up", edges)
	}
}

func TestPollDrains(t *testing.T) {
	b := NewButton()
	b.Press()

	if got := len(b.Poll()); got != 1 {
		t.Fatalf("first poll returned %d edges", got)
	}
	if got := len(b.Poll()); got != 0 {
		t.Fatalf("second poll returned %d edges, want drained", got)
	}
}

func TestReleaseWithoutPressIgnored(t *testing.T) {
	b := NewButton()
	b.Release()
	if got := len(b.Poll()); got != 0 {
		t.Fatalf("got %d edges for a release with no press", got)
	}
}
