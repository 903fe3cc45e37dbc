package monitor

// Limits describe the turbine's hand-derived operating envelope. Values come
// from the 1.5 MW unit's data sheet: rated generator speed is 1440 rpm with a
// gearbox ratio slightly over 78, giving a rated rotor speed of 18.39 rpm.
type Limits struct {
	GearboxBearingTempMax float64 // deg C, TbGbxBearingFastShaftA
	VRated                float64 // m/s
	VCutIn                float64 // m/s
	VCutOut               float64 // m/s
	PRated                float64 // kW
	TorqueRated           float64 // kNm
	WMaxRated             float64 // rpm

	BladeAngleTol float64 // deg
	VTol          float64 // m/s
	PTol          float64 // kW
	TorqueTol     float64 // kNm
	WTol          float64 // rpm
	TempTol       float64 // deg C
}

// DefaultLimits returns the envelope for the monitored turbine.
func DefaultLimits() Limits {
	return Limits{
		GearboxBearingTempMax: 60.0,
		VRated:                11.0,
		VCutIn:                3.5,
		VCutOut:               25.0,
		PRated:                1500.0,
		TorqueRated:           11.0,
		WMaxRated:             18.39,

		BladeAngleTol: 5.0,
		VTol:          0.5,
		PTol:          100.0,
		TorqueTol:     1.0,
		WTol:          1.0,
		TempTol:       1.0,
	}
}
