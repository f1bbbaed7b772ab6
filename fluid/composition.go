package fluid

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// FluidComposition is an immutable mapping from component name to mole
// fraction. Fractions are normalized to sum to 1 at construction time.
//
// Normalization uses exact decimal arithmetic rather than running float64
// sums: a natural-gas composition may carry a dozen trace components with
// fractions differing by several orders of magnitude, and a plain float64
// accumulation order-dependently drifts the sum away from 1 by enough to
// matter once it is inverted to scale every fraction.
type FluidComposition struct {
	fractions map[string]float64
}

// NewFluidComposition builds a normalized composition from raw mole
// fractions. All fractions must be >= 0 and not all zero.
func NewFluidComposition(moleFractions map[string]float64) (FluidComposition, error) {
	if len(moleFractions) == 0 {
		return FluidComposition{}, fmt.Errorf("fluid: composition must have at least one component")
	}
	names := make([]string, 0, len(moleFractions))
	sum := decimal.Zero
	for name, frac := range moleFractions {
		if frac < 0 {
			return FluidComposition{}, fmt.Errorf("fluid: mole fraction of %q is negative (%g)", name, frac)
		}
		sum = sum.Add(decimal.NewFromFloat(frac))
		names = append(names, name)
	}
	if sum.Sign() == 0 {
		return FluidComposition{}, fmt.Errorf("fluid: composition mole fractions sum to zero")
	}
	normalized := make(map[string]float64, len(moleFractions))
	for _, name := range names {
		scaled := decimal.NewFromFloat(moleFractions[name]).Div(sum)
		f, _ := scaled.Float64()
		normalized[name] = f
	}
	return FluidComposition{fractions: normalized}, nil
}

// MoleFraction returns the normalized mole fraction of the named component,
// or 0 if the component is absent from the composition.
func (c FluidComposition) MoleFraction(component string) float64 {
	return c.fractions[component]
}

// Components returns the component names present in the composition, sorted
// for deterministic iteration.
func (c FluidComposition) Components() []string {
	names := make([]string, 0, len(c.fractions))
	for name := range c.fractions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns a defensive copy of the normalized fraction map.
func (c FluidComposition) Map() map[string]float64 {
	out := make(map[string]float64, len(c.fractions))
	for k, v := range c.fractions {
		out[k] = v
	}
	return out
}
