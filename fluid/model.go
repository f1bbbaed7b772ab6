package fluid

// FluidModel bundles the read-only composition, equation-of-state choice,
// and thermodynamics binding that a single-stream train uses to build its
// suction-side stream from standard-conditions inputs (spec §3 "a fluid
// model (for single-stream trains)"; §6 new_single_speed_train /
// new_variable_speed_train). A FluidModel is immutable after construction
// and may be shared across trains and goroutines.
type FluidModel struct {
	Thermo      Thermodynamics
	Composition FluidComposition
	EoS         EoSModel
}

// NewFluidModel constructs a FluidModel.
func NewFluidModel(thermo Thermodynamics, composition FluidComposition, eos EoSModel) FluidModel {
	return FluidModel{Thermo: thermo, Composition: composition, EoS: eos}
}

// StreamAt flashes the model's composition to conditions at zero mass rate,
// the starting point for a train's suction-side stream before the caller's
// requested standard rate is applied.
func (m FluidModel) StreamAt(conditions ProcessConditions) (*Stream, error) {
	return New(m.Thermo, m.Composition, m.EoS, conditions, 0)
}
