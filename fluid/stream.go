package fluid

import (
	"fmt"

	"github.com/processcore/compressor/unit"
)

// Stream is an immutable thermodynamic state container: a composition,
// an equation of state tag, a (P,T) condition, and a mass rate, plus the
// flashed properties at that condition (spec §3 FluidStream).
//
// All mutating-looking operations (FlashTo, WithEnthalpyChange, Mix,
// WithMassRate) return a new *Stream; none of them touch the receiver.
// Derived rate conversions memoize the standard-conditions density on the
// receiver; per spec §5 the engine confines a train (and therefore every
// Stream it produces) to a single goroutine at a time, so this plain-field
// memoization needs no synchronization. A Stream deliberately shared across
// goroutines must not call StandardDensityKgM3 concurrently.
type Stream struct {
	thermo            Thermodynamics
	composition       FluidComposition
	eos               EoSModel
	conditions        ProcessConditions
	massRateKgPerHour float64
	props             Properties

	stdDensityResolved bool
	stdDensity         float64
	stdDensityErr      error
}

// New constructs a Stream by flashing composition at conditions.
func New(thermo Thermodynamics, composition FluidComposition, eos EoSModel, conditions ProcessConditions, massRateKgPerHour float64) (*Stream, error) {
	if massRateKgPerHour < 0 {
		return nil, fmt.Errorf("fluid: mass rate must be >= 0, got %g", massRateKgPerHour)
	}
	props, err := thermo.Flash(composition, eos, conditions, false)
	if err != nil {
		return nil, &ComputationError{Op: "create", Err: err}
	}
	return &Stream{
		thermo:            thermo,
		composition:       composition,
		eos:               eos,
		conditions:        conditions,
		massRateKgPerHour: massRateKgPerHour,
		props:             props,
	}, nil
}

func (s *Stream) Composition() FluidComposition        { return s.composition }
func (s *Stream) EoS() EoSModel                        { return s.eos }
func (s *Stream) Conditions() ProcessConditions        { return s.conditions }
func (s *Stream) MassRateKgPerHour() float64           { return s.massRateKgPerHour }
func (s *Stream) DensityKgM3() float64                 { return s.props.DensityKgM3 }
func (s *Stream) Z() float64                           { return s.props.Z }
func (s *Stream) Kappa() float64                       { return s.props.Kappa }
func (s *Stream) EnthalpyJPerKg() float64              { return s.props.EnthalpyJPerKg }
func (s *Stream) MolarMassKgPerMol() float64           { return s.props.MolarMassKgPerMol }
func (s *Stream) VaporMolarFraction() float64          { return s.props.VaporMolarFraction }
func (s *Stream) Properties() Properties               { return s.props }

// ActualRateM3PerHour returns the in-situ volumetric rate implied by the
// stream's mass rate and flashed density.
func (s *Stream) ActualRateM3PerHour() float64 {
	if s.props.DensityKgM3 == 0 {
		return 0
	}
	return s.massRateKgPerHour / s.props.DensityKgM3
}

// FlashTo returns a new Stream with the same composition and EoS model,
// reflashed at newConditions.
func (s *Stream) FlashTo(newConditions ProcessConditions, removeLiquid bool) (*Stream, error) {
	props, err := s.thermo.Flash(s.composition, s.eos, newConditions, removeLiquid)
	if err != nil {
		return nil, &ComputationError{Op: "flash_to", Err: err}
	}
	return &Stream{
		thermo:            s.thermo,
		composition:       s.composition,
		eos:               s.eos,
		conditions:        newConditions,
		massRateKgPerHour: s.massRateKgPerHour,
		props:             props,
	}, nil
}

// WithEnthalpyChange returns a new Stream at newPressureBara whose
// temperature is found by an enthalpy-pressure flash targeting
// (current enthalpy + deltaHJPerKg). This is the primitive the stage
// evaluator's Campbell-formula iteration uses to turn a polytropic head
// into an outlet temperature (spec §4.3).
func (s *Stream) WithEnthalpyChange(deltaHJPerKg, newPressureBara float64) (*Stream, error) {
	target := s.props.EnthalpyJPerKg + deltaHJPerKg
	props, conditions, err := s.thermo.FlashEnthalpyPressure(s.composition, s.eos, newPressureBara, target)
	if err != nil {
		return nil, &ComputationError{Op: "flash_with_enthalpy_change", Err: err}
	}
	return &Stream{
		thermo:            s.thermo,
		composition:       s.composition,
		eos:               s.eos,
		conditions:        conditions,
		massRateKgPerHour: s.massRateKgPerHour,
		props:             props,
	}, nil
}

// WithMassRate returns a copy of the stream with a different mass rate.
// Composition, EoS model and conditions are unchanged, so the flashed
// intensive properties (and the memoized standard density) carry over.
func (s *Stream) WithMassRate(massRateKgPerHour float64) *Stream {
	cp := *s
	cp.massRateKgPerHour = massRateKgPerHour
	return &cp
}

// Mix combines s and other, weighted by the given mass rates, at the
// requested conditions. The resulting composition is mole-weighted (using
// each stream's aggregate molar mass to convert mass rate to molar flow);
// the mixture is then flashed fresh at conditions (spec §4.1).
//
// Zero-rate boundary rule (resolves spec §9's open question): if both mass
// rates are zero, s is returned unchanged. If exactly one is zero, the
// result is the other stream reflashed at conditions, carrying the summed
// (here: the other's) mass rate — the zero-rate stream contributes no
// moles regardless of its own density or phase state. This is applied
// uniformly everywhere Mix is called.
func (s *Stream) Mix(other *Stream, selfMassRateKgPerHour, otherMassRateKgPerHour float64, conditions ProcessConditions) (*Stream, error) {
	total := selfMassRateKgPerHour + otherMassRateKgPerHour
	switch {
	case selfMassRateKgPerHour == 0 && otherMassRateKgPerHour == 0:
		return s, nil
	case selfMassRateKgPerHour == 0:
		mixed, err := other.FlashTo(conditions, false)
		if err != nil {
			return nil, err
		}
		return mixed.WithMassRate(total), nil
	case otherMassRateKgPerHour == 0:
		mixed, err := s.FlashTo(conditions, false)
		if err != nil {
			return nil, err
		}
		return mixed.WithMassRate(total), nil
	}

	n1 := selfMassRateKgPerHour / s.props.MolarMassKgPerMol
	n2 := otherMassRateKgPerHour / other.props.MolarMassKgPerMol
	totalMolar := n1 + n2

	componentSet := make(map[string]struct{})
	for _, c := range s.composition.Components() {
		componentSet[c] = struct{}{}
	}
	for _, c := range other.composition.Components() {
		componentSet[c] = struct{}{}
	}
	mixedFractions := make(map[string]float64, len(componentSet))
	for c := range componentSet {
		mixedFractions[c] = (n1*s.composition.MoleFraction(c) + n2*other.composition.MoleFraction(c)) / totalMolar
	}
	mixedComposition, err := NewFluidComposition(mixedFractions)
	if err != nil {
		return nil, err
	}
	return New(s.thermo, mixedComposition, s.eos, conditions, total)
}

// StandardDensityKgM3 flashes the stream's composition to standard
// conditions with liquid removed, and returns the resulting density. The
// result is memoized since it only depends on composition and EoS model,
// both of which never change across WithMassRate/WithEnthalpyChange calls
// that share this receiver's lineage.
func (s *Stream) StandardDensityKgM3() (float64, error) {
	if s.stdDensityResolved {
		return s.stdDensity, s.stdDensityErr
	}
	props, err := s.thermo.Flash(s.composition, s.eos, Standard, true)
	if err != nil {
		s.stdDensityErr = &ComputationError{Op: "standard_density", Err: err}
		s.stdDensityResolved = true
		return 0, s.stdDensityErr
	}
	s.stdDensity = props.DensityKgM3
	s.stdDensityResolved = true
	return s.stdDensity, nil
}

// StandardRateToMassRate converts a standard-conditions volumetric rate
// [Sm3/day] to a mass rate [kg/h] using this stream's standard density.
func (s *Stream) StandardRateToMassRate(stdRateSm3PerDay float64) (float64, error) {
	rho, err := s.StandardDensityKgM3()
	if err != nil {
		return 0, err
	}
	return stdRateSm3PerDay * rho / unit.HoursPerDay, nil
}

// MassRateToStandardRate is the inverse of StandardRateToMassRate.
func (s *Stream) MassRateToStandardRate(massRateKgPerHour float64) (float64, error) {
	rho, err := s.StandardDensityKgM3()
	if err != nil {
		return 0, err
	}
	if rho == 0 {
		return 0, nil
	}
	return massRateKgPerHour * unit.HoursPerDay / rho, nil
}
