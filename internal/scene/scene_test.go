package scene

import (
	"testing"

	"github.com/san-kum/lorenzsim/internal/trajectory"
)

func TestGradientEndpoints(t *testing.T) {
	g := DefaultGradient(10)
	if len(g) != 10 {
		t.Fatalf("expected 10 colours, got %d", len(g))
	}
	if g[0].Hex() != "#1c758a" {
		t.Errorf("expected first colour #1c758a, got %s", g[0].Hex())
	}
	if g[9].Hex() != "#c7e9f1" {
		t.Errorf("expected last colour #c7e9f1, got %s", g[9].Hex())
	}

	for i := 1; i < len(g); i++ {
		if g[i].R < g[i-1].R {
			t.Errorf("red channel not monotonic at %d", i)
		}
	}
}

func TestGradientSmallCounts(t *testing.T) {
	if g := Gradient(BlueE, BlueA, 0); g != nil {
		t.Errorf("expected nil for n=0, got %v", g)
	}
	if g := Gradient(BlueE, BlueA, 1); len(g) != 1 || g[0] != BlueE {
		t.Errorf("expected the start colour for n=1, got %v", g)
	}
}

func TestParseGradient(t *testing.T) {
	g, err := ParseGradient("#000000", "#ffffff", 3)
	if err != nil {
		t.Fatalf("ParseGradient: %v", err)
	}
	if g[1].Hex() != "#808080" {
		t.Errorf("expected mid grey, got %s", g[1].Hex())
	}
	if _, err := ParseGradient("blue", "#ffffff", 3); err == nil {
		t.Error("expected error for non-hex colour")
	}
}

func TestPaint(t *testing.T) {
	trajs := []*trajectory.Trajectory{{}, {}}
	curves, err := Paint(trajs, DefaultGradient(2))
	if err != nil {
		t.Fatalf("Paint: %v", err)
	}
	if curves[1].Trajectory != trajs[1] || curves[1].Color.Hex() != BlueA.Hex() {
		t.Errorf("curve 1 not paired in order: %+v", curves[1])
	}
	if _, err := Paint(trajs, DefaultGradient(1)); err == nil {
		t.Error("expected error when colours run out")
	}
}
