package physics

import (
	"math"

	"github.com/san-kum/lorenzsim/internal/dynamo"
)

// Params are the Lorenz constants σ, ρ and β.
type Params struct {
	Sigma float64 `yaml:"sigma" json:"sigma"`
	Rho   float64 `yaml:"rho" json:"rho"`
	Beta  float64 `yaml:"beta" json:"beta"`
}

// DefaultParams reproduces the classic butterfly regime.
func DefaultParams() Params { return Params{Sigma: 10.0, Rho: 28.0, Beta: 8.0 / 3.0} }

func (p Params) Validate() error {
	for _, kv := range []struct {
		name string
		v    float64
	}{{"sigma", p.Sigma}, {"rho", p.Rho}, {"beta", p.Beta}} {
		if math.IsNaN(kv.v) || math.IsInf(kv.v, 0) {
			return dynamo.InvalidParameter("%s must be finite, got %g", kv.name, kv.v)
		}
	}
	return nil
}

type Lorenz struct{ p Params }

func NewLorenz(p Params) (*Lorenz, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Lorenz{p}, nil
}

func (l *Lorenz) StateDim() int  { return 3 }
func (l *Lorenz) Params() Params { return l.p }

// Derive calculates the Lorenz attractor derivatives. The field is autonomous.
func (l *Lorenz) Derive(s dynamo.State, _ float64) dynamo.State {
	return dynamo.State{l.p.Sigma * (s[1] - s[0]), s[0]*(l.p.Rho-s[2]) - s[1], s[0]*s[1] - l.p.Beta*s[2]}
}

func (l *Lorenz) DefaultState() dynamo.State { return dynamo.State{10.0, 10.0, 10.0} }

func (l *Lorenz) GetParams() map[string]float64 {
	return map[string]float64{"sigma": l.p.Sigma, "rho": l.p.Rho, "beta": l.p.Beta}
}

// Equilibria returns the fixed points of the field: the origin, and for
// ρ > 1 the pair C± = (±√(β(ρ−1)), ±√(β(ρ−1)), ρ−1).
func (l *Lorenz) Equilibria() []dynamo.State {
	eq := []dynamo.State{{0, 0, 0}}
	if l.p.Rho > 1 && l.p.Beta > 0 {
		c := math.Sqrt(l.p.Beta * (l.p.Rho - 1))
		eq = append(eq, dynamo.State{c, c, l.p.Rho - 1}, dynamo.State{-c, -c, l.p.Rho - 1})
	}
	return eq
}
