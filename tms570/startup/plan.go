package startup

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Phase is one step of the startup sequence.
type Phase int64

const (
	PhaseCoreInit Phase = iota
	PhaseStack
	PhaseEventBus
	PhaseErrata
	PhaseResetCause
	PhaseEFuseAutoload
	PhasePLLSetup
	PhaseEFuseCheck
	PhasePeripherals
	PhaseFlash
	PhaseLPOTrim
	PhaseClockDomains
	PhasePLLLock
	PhaseClockSource
	PhasePeripheralDividers
	PhasePLLDivider
	PhaseECLK
	PhaseClockSupervisor
	PhasePBISTROM
	PhasePBISTRAM
	PhaseRAMECC
	PhaseVIMParity
	PhaseMemoryInit
	PhaseVIC
	PhaseDataSections
	PhaseApplication
	numPhases
)

var phaseNames = [numPhases]string{
	"core-init",
	"stack",
	"event-bus",
	"errata",
	"reset-cause",
	"efuse-autoload",
	"pll-setup",
	"efuse-check",
	"peripherals",
	"flash",
	"lpo-trim",
	"clock-domains",
	"pll-lock",
	"clock-source",
	"peripheral-dividers",
	"pll-divider",
	"eclk",
	"clock-supervisor",
	"pbist-rom",
	"pbist-ram",
	"ram-ecc",
	"vim-parity",
	"memory-init",
	"vic",
	"data-sections",
	"application",
}

func (p Phase) String() string {
	if p >= 0 && p < numPhases {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int64(p))
}

// ID implements graph.Node.
func (p Phase) ID() int64 {
	return int64(p)
}

// Sequence is the order in which the sequencer runs the phases. Optional
// phases that are disabled by the configuration are skipped in place.
var Sequence = []Phase{
	PhaseCoreInit,
	PhaseStack,
	PhaseEventBus,
	PhaseErrata,
	PhaseResetCause,
	PhaseEFuseAutoload,
	PhasePLLSetup,
	PhaseEFuseCheck,
	PhasePeripherals,
	PhaseFlash,
	PhaseLPOTrim,
	PhaseClockDomains,
	PhasePLLLock,
	PhaseClockSource,
	PhasePeripheralDividers,
	PhasePLLDivider,
	PhaseECLK,
	PhaseClockSupervisor,
	PhasePBISTROM,
	PhasePBISTRAM,
	PhaseRAMECC,
	PhaseVIMParity,
	PhaseMemoryInit,
	PhaseVIC,
	PhaseDataSections,
	PhaseApplication,
}

// constraints lists the hardware ordering requirements as (before, after)
// pairs.
var constraints = [][2]Phase{
	// Core state is set up before any module is touched
	{PhaseCoreInit, PhaseStack},
	{PhaseStack, PhaseEventBus},
	{PhaseEventBus, PhaseErrata},
	{PhaseErrata, PhaseResetCause},

	// Trim and repair data must be loaded before the clocks are changed
	{PhaseResetCause, PhaseEFuseAutoload},
	{PhaseEFuseAutoload, PhasePLLSetup},

	// Work that overlaps the PLL lock time
	{PhasePLLSetup, PhaseEFuseCheck},
	{PhasePLLSetup, PhasePeripherals},
	{PhasePLLSetup, PhaseFlash},
	{PhasePLLSetup, PhaseLPOTrim},
	{PhasePLLSetup, PhaseClockDomains},
	{PhaseEFuseCheck, PhasePLLLock},
	{PhasePeripherals, PhasePLLLock},
	{PhaseFlash, PhasePLLLock},
	{PhaseLPOTrim, PhasePLLLock},
	{PhaseClockDomains, PhasePLLLock},

	// Flash wait states before any clock speed up
	{PhaseFlash, PhaseClockSource},
	{PhaseFlash, PhasePLLDivider},

	// Clock switch only after lock, dividers before the final PLL divider
	{PhasePLLLock, PhaseClockSource},
	{PhaseClockSource, PhasePeripheralDividers},
	{PhasePeripherals, PhasePeripheralDividers},
	{PhasePeripheralDividers, PhasePLLDivider},
	{PhasePLLDivider, PhaseECLK},
	{PhaseECLK, PhaseClockSupervisor},

	// Memory tests run at full speed on verified clocks
	{PhaseClockSupervisor, PhasePBISTROM},
	{PhasePBISTROM, PhasePBISTRAM},
	{PhasePBISTRAM, PhaseRAMECC},
	{PhaseRAMECC, PhaseVIMParity},
	{PhaseVIMParity, PhaseMemoryInit},

	// RAM content is valid only after hardware initialization
	{PhasePBISTRAM, PhaseMemoryInit},
	{PhaseMemoryInit, PhaseVIC},
	{PhaseMemoryInit, PhaseDataSections},
	{PhaseVIC, PhaseDataSections},
	{PhaseDataSections, PhaseApplication},
}

// ErrOrder is returned for a phase trace that breaks an ordering constraint.
var ErrOrder = errors.New("startup phase order violated")

// Plan is the graph of ordering constraints between the startup phases.
type Plan struct {
	g *simple.DirectedGraph
}

func NewPlan() *Plan {
	g := simple.NewDirectedGraph()
	for p := Phase(0); p < numPhases; p++ {
		g.AddNode(p)
	}
	for _, c := range constraints {
		g.SetEdge(g.NewEdge(c[0], c[1]))
	}
	return &Plan{g: g}
}

// Order returns a topological order of every phase.
func (p *Plan) Order() ([]Phase, error) {
	nodes, err := topo.Sort(p.g)
	if err != nil {
		return nil, err
	}
	order := make([]Phase, len(nodes))
	for i, n := range nodes {
		order[i] = n.(Phase)
	}
	return order, nil
}

// Requires reports whether phase before must run before phase after,
// directly or through other phases.
func (p *Plan) Requires(before, after Phase) bool {
	return before != after && topo.PathExistsIn(p.g, p.node(before), p.node(after))
}

func (p *Plan) node(ph Phase) graph.Node {
	return p.g.Node(int64(ph))
}

// Verify checks a trace of executed phases against the constraints. Phases
// that are missing from the trace are not checked, but constraints passing
// through them still apply to the phases around them.
func (p *Plan) Verify(trace []Phase) error {
	var errs []error
	for i, later := range trace {
		for _, earlier := range trace[:i] {
			if p.Requires(later, earlier) {
				errs = append(errs, fmt.Errorf("%w: %s ran before %s", ErrOrder, earlier, later))
			}
		}
	}
	return errors.Join(errs...)
}
