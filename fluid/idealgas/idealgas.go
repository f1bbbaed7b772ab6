// Package idealgas is a corresponding-states reference implementation of
// fluid.Thermodynamics, for tests and for driving the train solver without
// a production equation-of-state backend (spec §9, "Fluid library as an
// interface" — "tests can inject an ideal-gas stub for fast
// property-based testing of the control logic").
//
// Component ideal-gas heat capacities and critical properties are drawn
// from standard natural-gas-engineering tables (not reproduced from any
// proprietary source); the compressibility factor uses the
// Dranchuk-Abou-Kassem corresponding-states correlation (grounded on the
// same style of closed-form cubic-equation-of-state solve as
// other_examples' zfactor/cubic package, adapted here to pseudo-reduced
// natural-gas mixture properties via Kay's rule rather than a per-component
// cubic root solve, which keeps multi-component mixing simple).
package idealgas

import (
	"fmt"
	"math"

	"github.com/processcore/compressor/fluid"
)

// component holds the per-species constants used by the correlation.
type component struct {
	molarMassKgPerMol float64
	criticalTempK     float64
	criticalPressureB float64 // bara
	acentric          float64
	// ideal-gas molar heat capacity cp0(T) = a + b*T + c*T^2, J/(mol*K)
	a, b, c float64
	// condensableBelowK is the rough temperature below which this component
	// is treated as fully liquid when remove_liquid is requested (0 means
	// never condenses in this reference model).
	condensableBelowK float64
}

var components = map[string]component{
	"methane":  {0.016043, 190.6, 46.0, 0.011, 34.31, 0.05469, 0.0000832, 0},
	"ethane":   {0.030070, 305.4, 48.8, 0.099, 49.37, 0.13339, -0.0000114, 0},
	"propane":  {0.044097, 369.8, 42.5, 0.152, 68.03, 0.22491, -0.0001312, 0},
	"i-butane": {0.058123, 408.1, 36.5, 0.186, 89.46, 0.30130, -0.0001893, 0},
	"n-butane": {0.058123, 425.2, 38.0, 0.200, 92.30, 0.27900, -0.0001550, 0},
	"i-pentane": {0.072150, 460.4, 33.9, 0.227, 112.6, 0.33790, -0.0001930, 0},
	"n-pentane": {0.072150, 469.7, 33.7, 0.251, 114.8, 0.34090, -0.0001980, 0},
	"n-hexane": {0.086177, 507.6, 30.3, 0.296, 137.4, 0.40630, -0.0002350, 0},
	"nitrogen": {0.028013, 126.2, 33.9, 0.040, 29.12, -0.00144, 0.0000081, 0},
	"co2":      {0.044010, 304.2, 73.8, 0.225, 22.26, 0.05981, -0.0000351, 0},
	"water":    {0.018015, 647.3, 220.5, 0.344, 32.24, 0.00192, 0.0000106, 344.0},
}

const gasConstant = 8.314472 // J/(mol*K)

// EoS is a fluid.Thermodynamics backend built on corresponding-states
// correlations. It is safe for concurrent use across distinct streams.
type EoS struct{}

// New returns a ready-to-use reference thermodynamics backend.
func New() *EoS { return &EoS{} }

func lookup(name string) (component, error) {
	c, ok := components[name]
	if !ok {
		return component{}, fmt.Errorf("idealgas: unknown component %q", name)
	}
	return c, nil
}

// mixtureProperties computes the Kay's-rule pseudo-critical properties,
// molar mass, and ideal-gas cp(T) for the vapor phase of composition. If
// removeLiquid is true, any component whose condensableBelowK exceeds the
// flash temperature is dropped from the vapor mole fractions (and the
// dropped fraction is returned as 1 - vaporMolarFraction).
func mixtureProperties(composition fluid.FluidComposition, temperatureKelvin float64, removeLiquid bool) (molarMass, tc, pc, acentric float64, cp0 func(float64) float64, vaporFraction float64, err error) {
	type weighted struct {
		frac float64
		c    component
	}
	entries := make([]weighted, 0, len(composition.Components()))
	vaporTotal := 0.0
	for _, name := range composition.Components() {
		c, lookupErr := lookup(name)
		if lookupErr != nil {
			err = lookupErr
			return
		}
		frac := composition.MoleFraction(name)
		if removeLiquid && c.condensableBelowK > 0 && temperatureKelvin < c.condensableBelowK {
			continue // knocked out as liquid, does not contribute to vapor properties
		}
		entries = append(entries, weighted{frac: frac, c: c})
		vaporTotal += frac
	}
	if vaporTotal == 0 {
		err = fmt.Errorf("idealgas: no vapor phase remains after liquid removal at %.1f K", temperatureKelvin)
		return
	}
	vaporFraction = vaporTotal
	for _, e := range entries {
		w := e.frac / vaporTotal
		molarMass += w * e.c.molarMassKgPerMol
		tc += w * e.c.criticalTempK
		pc += w * e.c.criticalPressureB
		acentric += w * e.c.acentric
	}
	cp0 = func(t float64) float64 {
		var sum float64
		for _, e := range entries {
			w := e.frac / vaporTotal
			sum += w * (e.c.a + e.c.b*t + e.c.c*t*t)
		}
		return sum
	}
	return
}

// zFactorDAK solves for Z via the Dranchuk-Abou-Kassem correlation given
// pseudo-reduced pressure and temperature, using fixed-point (successive
// substitution) iteration — adequate for the pressure/temperature ranges a
// compressor train operates in and simple enough to keep this a "fast
// stub" per spec §9.
func zFactorDAK(pr, tr float64) float64 {
	const (
		a1 = 0.3265
		a2 = -1.0700
		a3 = -0.5339
		a4 = 0.01569
		a5 = -0.05165
		a6 = 0.5475
		a7 = -0.7361
		a8 = 0.1844
		a9 = 0.1056
		a10 = 0.6134
		a11 = 0.7210
	)
	z := 1.0
	for i := 0; i < 50; i++ {
		rhoR := 0.27 * pr / (z * tr)
		t2 := 1 / (tr * tr)
		t3 := t2 / tr
		c1 := a1 + a2/tr + a3*t3 + a4*t2*t2 + a5*t2*t3
		c2 := a6 + a7/tr + a8*t2
		c3 := a9 * (a7/tr + a8*t2)
		newZ := 1 + c1*rhoR + c2*rhoR*rhoR - c3*math.Pow(rhoR, 5) +
			a10*(1+a11*rhoR*rhoR)*(rhoR*rhoR/(tr*tr*tr))*math.Exp(-a11*rhoR*rhoR)
		if math.Abs(newZ-z) < 1e-8 {
			z = newZ
			break
		}
		z = 0.5*z + 0.5*newZ // damped update for stability
	}
	if z <= 0 || math.IsNaN(z) {
		z = 1
	}
	return z
}

// Flash implements fluid.Thermodynamics.
func (e *EoS) Flash(composition fluid.FluidComposition, eosModel fluid.EoSModel, conditions fluid.ProcessConditions, removeLiquid bool) (fluid.Properties, error) {
	molarMass, tc, pc, acentric, cp0, vaporFraction, err := mixtureProperties(composition, conditions.TemperatureKelvin, removeLiquid)
	if err != nil {
		return fluid.Properties{}, err
	}
	_ = acentric // reserved for a future departure-function refinement
	pr := conditions.PressureBara / pc
	tr := conditions.TemperatureKelvin / tc
	z := zFactorDAK(pr, tr)

	densityKgM3 := conditions.PressureBara * 1e5 * molarMass / (z * gasConstant * conditions.TemperatureKelvin)

	cp := cp0(conditions.TemperatureKelvin) // J/(mol*K)
	cv := cp - gasConstant
	if cv <= 0 {
		cv = gasConstant * 0.5
	}
	kappa := cp / cv

	enthalpyJPerKg := enthalpyJPerMol(cp0, conditions.TemperatureKelvin) / molarMass

	return fluid.Properties{
		DensityKgM3:        densityKgM3,
		Z:                  z,
		Kappa:              kappa,
		EnthalpyJPerKg:     enthalpyJPerKg,
		MolarMassKgPerMol:  molarMass,
		VaporMolarFraction: vaporFraction,
	}, nil
}

const enthalpyReferenceK = 273.15

// enthalpyJPerMol integrates the ideal-gas cp(T) polynomial from a fixed
// reference temperature, giving a consistent (if arbitrary-origin) molar
// enthalpy. Pressure departure is not modeled, consistent with this being
// an ideal-gas reference stub (spec §9).
func enthalpyJPerMol(cp0 func(float64) float64, t float64) float64 {
	const steps = 32
	dt := (t - enthalpyReferenceK) / steps
	sum := 0.0
	for i := 0; i < steps; i++ {
		t0 := enthalpyReferenceK + float64(i)*dt
		t1 := t0 + dt
		sum += 0.5 * (cp0(t0) + cp0(t1)) * dt
	}
	return sum
}

// FlashEnthalpyPressure implements fluid.Thermodynamics by bisecting on
// temperature until the flashed specific enthalpy matches the target.
func (e *EoS) FlashEnthalpyPressure(composition fluid.FluidComposition, eosModel fluid.EoSModel, pressureBara, targetEnthalpyJPerKg float64) (fluid.Properties, fluid.ProcessConditions, error) {
	lowT, highT := 150.0, 900.0
	f := func(t float64) (float64, error) {
		props, err := e.Flash(composition, eosModel, fluid.ProcessConditions{PressureBara: pressureBara, TemperatureKelvin: t}, false)
		if err != nil {
			return 0, err
		}
		return props.EnthalpyJPerKg - targetEnthalpyJPerKg, nil
	}
	flow, err := f(lowT)
	if err != nil {
		return fluid.Properties{}, fluid.ProcessConditions{}, err
	}
	fhigh, err := f(highT)
	if err != nil {
		return fluid.Properties{}, fluid.ProcessConditions{}, err
	}
	if flow > 0 || fhigh < 0 {
		// Enthalpy is monotone increasing in T; if the bracket doesn't
		// contain a root, clamp to the nearest bound rather than failing
		// the whole train evaluation on a unit-conversion edge case.
		if flow > 0 {
			highT = lowT
		} else {
			lowT = highT
		}
	}
	var mid float64
	for i := 0; i < 60; i++ {
		mid = 0.5 * (lowT + highT)
		fm, ferr := f(mid)
		if ferr != nil {
			return fluid.Properties{}, fluid.ProcessConditions{}, ferr
		}
		if math.Abs(fm) < 1e-6*math.Abs(targetEnthalpyJPerKg)+1e-3 {
			break
		}
		if (fm > 0) == (flow > 0) {
			lowT = mid
		} else {
			highT = mid
		}
	}
	conditions := fluid.ProcessConditions{PressureBara: pressureBara, TemperatureKelvin: mid}
	props, err := e.Flash(composition, eosModel, conditions, false)
	if err != nil {
		return fluid.Properties{}, fluid.ProcessConditions{}, err
	}
	return props, conditions, nil
}
