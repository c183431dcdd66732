package population

// ISIStatus is the inter-spike-interval state machine driving resource-STDP
// plasticity (§4.6, GLOSSARY "ISI").
type ISIStatus int

const (
	// NotInISI means the neuron is not currently tracking an ISI period.
	NotInISI ISIStatus = iota
	// PeriodStarted means a new ISI period has just begun.
	PeriodStarted
	// PeriodContinued means the neuron is still within an ongoing ISI period.
	PeriodContinued
	// IsForced means the current spike was driven by a forcing (non-plastic)
	// projection rather than the network's own dynamics.
	IsForced
)

// SynapticResourceSTDPParameters is the plasticity-enabled neuron kind: a
// BLIFAT neuron plus the additional per-neuron state resource-STDP needs
// (§4.6). It is one of the closed set of supported neuron kinds.
type SynapticResourceSTDPParameters struct {
	BLIFATParameters

	FreeSynapticResource      float64
	SynapticResourceThreshold float64

	Stability                 float64
	StabilityChangeParameter  float64
	StabilityChangeAtISI      float64

	ISIMax            float64
	FirstISISpike     uint64
	LastStep          uint64
	LastUnforcedSpike uint64
	ISIStatus         ISIStatus
	IsBeingForced     bool

	DH                      float64
	ResourceDrainCoefficient float64
}

// NewSynapticResourceSTDPParameters returns a plasticity-enabled neuron with
// BLIFAT defaults and an idle ISI state machine.
func NewSynapticResourceSTDPParameters() SynapticResourceSTDPParameters {
	return SynapticResourceSTDPParameters{
		BLIFATParameters: NewBLIFATParameters(),
		ISIStatus:        NotInISI,
	}
}

// UpdateISI recomputes the neuron's ISI status given the elapsed time since
// its last recorded spike step, per §4.6 step 1. isForced marks a spike
// driven by a forcing projection.
func UpdateISI(n *SynapticResourceSTDPParameters, currentStep uint64, isForced bool) {
	elapsed := currentStep - n.LastStep
	n.IsBeingForced = isForced

	switch {
	case isForced:
		n.ISIStatus = IsForced
	case float64(elapsed) > n.ISIMax || n.LastStep == 0:
		n.ISIStatus = PeriodStarted
		n.FirstISISpike = currentStep
	default:
		n.ISIStatus = PeriodContinued
	}
	n.LastStep = currentStep
}
