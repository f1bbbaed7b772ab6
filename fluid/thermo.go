package fluid

// Properties is the set of intensive thermodynamic properties a
// Thermodynamics backend reports for a flashed state.
type Properties struct {
	DensityKgM3       float64
	Z                 float64 // compressibility factor
	Kappa             float64 // cp/cv
	EnthalpyJPerKg    float64
	MolarMassKgPerMol float64
	VaporMolarFraction float64
}

// Thermodynamics is the narrow collaborator interface the compressor train
// engine consumes to flash a fluid composition to a thermodynamic state.
// It is a trait/interface rather than a fixed dependency (spec §9,
// "Fluid library as an interface") so that a production EoS backend and a
// fast ideal-gas stub (see package fluid/idealgas) can both satisfy it.
//
// Implementations are expected to be safe to call concurrently across
// distinct streams; per spec §5 the engine never calls into one backend
// instance concurrently for the *same* stream.
type Thermodynamics interface {
	// Flash computes equilibrium properties for composition at the given
	// conditions. If removeLiquid is true, any condensed liquid phase is
	// dropped before properties are reported (used for stage inlet cooling
	// and standard-conditions density, spec §4.1/§4.3).
	Flash(composition FluidComposition, eos EoSModel, conditions ProcessConditions, removeLiquid bool) (Properties, error)

	// FlashEnthalpyPressure finds the temperature at pressureBara for which
	// the fluid's specific enthalpy equals targetEnthalpyJPerKg, and returns
	// the properties and resolved conditions at that state. This backs
	// Stream.WithEnthalpyChange, which is the primitive the stage
	// evaluator's head/enthalpy inner iteration depends on (spec §4.3).
	FlashEnthalpyPressure(composition FluidComposition, eos EoSModel, pressureBara, targetEnthalpyJPerKg float64) (Properties, ProcessConditions, error)
}
