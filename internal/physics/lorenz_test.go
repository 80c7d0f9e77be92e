package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lorenzsim/internal/dynamo"
)

func TestLorenzDerive(t *testing.T) {
	l, err := NewLorenz(DefaultParams())
	if err != nil {
		t.Fatalf("NewLorenz: %v", err)
	}

	d := l.Derive(dynamo.State{1, 2, 3}, 0)
	expected := dynamo.State{10 * (2 - 1), 1*(28-3) - 2, 1*2 - 8.0/3.0*3}
	for i := range expected {
		if math.Abs(d[i]-expected[i]) > 1e-12 {
			t.Errorf("component %d: got %.12f, expected %.12f", i, d[i], expected[i])
		}
	}
}

func TestLorenzOriginIsEquilibrium(t *testing.T) {
	params := []Params{
		DefaultParams(),
		{Sigma: 0, Rho: 0, Beta: 0},
		{Sigma: -3.5, Rho: 160, Beta: 1e6},
		{Sigma: 1e-9, Rho: -28, Beta: -8},
	}
	for _, p := range params {
		l, err := NewLorenz(p)
		if err != nil {
			t.Fatalf("NewLorenz(%+v): %v", p, err)
		}
		d := l.Derive(dynamo.State{0, 0, 0}, 17.5)
		if d[0] != 0 || d[1] != 0 || d[2] != 0 {
			t.Errorf("params %+v: derivative at origin = %v, want exactly zero", p, d)
		}
	}
}

func TestLorenzFiniteForFiniteInput(t *testing.T) {
	l, _ := NewLorenz(Params{Sigma: 1e3, Rho: -1e3, Beta: 1e3})
	inputs := []dynamo.State{
		{1e6, -1e6, 1e6},
		{-50, 50, 0},
		{1e-300, 1e-300, -1e-300},
		{math.MaxFloat32, 0, 0},
	}
	for _, x := range inputs {
		if d := l.Derive(x, 0); !d.IsValid() {
			t.Errorf("Derive(%v) = %v, want finite", x, d)
		}
	}
}

func TestLorenzTimeInvariant(t *testing.T) {
	l, _ := NewLorenz(DefaultParams())
	x := dynamo.State{-3, 4, 21}
	a, b := l.Derive(x, 0), l.Derive(x, 1234.5)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("derivative depends on time: %v vs %v", a, b)
		}
	}
}

func TestLorenzEquilibria(t *testing.T) {
	l, _ := NewLorenz(DefaultParams())
	eq := l.Equilibria()
	if len(eq) != 3 {
		t.Fatalf("expected 3 equilibria, got %d", len(eq))
	}
	for _, p := range eq {
		if n := l.Derive(p, 0).Norm(); n > 1e-9 {
			t.Errorf("equilibrium %v has derivative norm %e", p, n)
		}
	}

	sub, _ := NewLorenz(Params{Sigma: 10, Rho: 0.5, Beta: 8.0 / 3.0})
	if got := len(sub.Equilibria()); got != 1 {
		t.Errorf("rho < 1: expected only the origin, got %d equilibria", got)
	}
}

func TestNewLorenzRejectsNonFinite(t *testing.T) {
	bad := []Params{
		{Sigma: math.NaN(), Rho: 28, Beta: 8.0 / 3.0},
		{Sigma: 10, Rho: math.Inf(1), Beta: 8.0 / 3.0},
		{Sigma: 10, Rho: 28, Beta: math.Inf(-1)},
	}
	for _, p := range bad {
		if _, err := NewLorenz(p); !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("NewLorenz(%+v) error = %v, want ErrInvalidParameter", p, err)
		}
	}
}

func TestLorenzGetParams(t *testing.T) {
	l, _ := NewLorenz(DefaultParams())
	p := l.GetParams()
	if p["sigma"] != 10 || p["rho"] != 28 || p["beta"] != 8.0/3.0 {
		t.Errorf("unexpected params: %v", p)
	}
}
