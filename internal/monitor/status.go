package monitor

// Named conditions referenced by the rule engine.
const (
	StatusTurbineOK      = "Turbine OK"
	StatusGridConnection = "Turbine with Grid Connection"
	StatusRunUpIdling    = "Run Up / Idling"
	StatusEmergencyStop  = "Emergency STOP"
)

// statusBitNames maps each bit of OpCtl_TurbineStatus, LSB first, to its
// condition name. The table must match the HMI documentation bit for bit.
var statusBitNames = [16]string{
	StatusTurbineOK,
	StatusGridConnection,
	StatusRunUpIdling,
	"Maintenance",
	"Repair",
	"Grid loss",
	"Weather conditions",
	"Stop extern",
	"Stopped (manual Stop, if turbine ok)",
	"Stopped (remote Stop, if turbine ok)",
	StatusEmergencyStop,
	"External Stop regarding Energy Curtailment",
	"Customer Stop",
	"Manual Idle Stop",
	"Remote Idle Stop",
	"Wind Direction Curtailment",
}

// Status is the set of operating conditions decoded from the status word,
// ordered by bit position. It carries no memory across cycles.
type Status []string

// DecodeStatus expands the 16-bit turbine status word into named conditions.
// Any input is valid; an all-zero word decodes to an empty set.
func DecodeStatus(bits uint16) Status {
	var status Status
	for i, name := range statusBitNames {
		if bits&(1<<i) != 0 {
			status = append(status, name)
		}
	}
	return status
}

// Contains reports whether the condition is present.
func (s Status) Contains(name string) bool {
	for _, c := range s {
		if c == name {
			return true
		}
	}
	return false
}
