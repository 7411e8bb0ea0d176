package tms570

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Group is an error signaling module channel group.
type Group uint8

const (
	Group1 Group = iota
	Group2
	Group3
	Group4
)

func (g Group) String() string {
	return fmt.Sprintf("G%d", uint8(g)+1)
}

// Channel identifies one error source. The same channel number exists in
// every group, so a channel is always the (group, number) pair.
type Channel struct {
	Group  Group
	Number uint8
}

// Group 1: errors that can be configured to raise an interrupt and drive the
// error pin.
var (
	MibADC2RAM             = Channel{Group1, 1}
	DMAMPU                 = Channel{Group1, 2}
	DMAParity              = Channel{Group1, 3}
	DMAErrorImprecise      = Channel{Group1, 5}
	FMCError               = Channel{Group1, 6}
	N2HET1Parity           = Channel{Group1, 7}
	HETTUxParity           = Channel{Group1, 8}
	HETTUxMPU              = Channel{Group1, 9}
	PLL1Slip               = Channel{Group1, 10}
	OscFail                = Channel{Group1, 11}
	DMAErrorPrecise        = Channel{Group1, 13}
	VIMParity              = Channel{Group1, 15}
	MibSPI1Parity          = Channel{Group1, 17}
	MibSPI3Parity          = Channel{Group1, 18}
	MibADC1Parity          = Channel{Group1, 19}
	DCAN1Parity            = Channel{Group1, 21}
	DCAN3Parity            = Channel{Group1, 22}
	DCAN2Parity            = Channel{Group1, 23}
	MibSPI5Parity          = Channel{Group1, 25}
	RAMEvenCorrectableECC  = Channel{Group1, 26}
	CPUSelfTest            = Channel{Group1, 27}
	RAMOddCorrectableECC   = Channel{Group1, 28}
	DCC1                   = Channel{Group1, 30}
	CCMR4SelfTest          = Channel{Group1, 31}
	N2HET2Parity           = Channel{Group1, 34}
	FMCCorrectableECC      = Channel{Group1, 35}
	FMCUncorrectableECCBus = Channel{Group1, 36}
	IOMMAccess             = Channel{Group1, 37}
	PowerDomainCompare     = Channel{Group1, 38}
	PowerDomainSelfTest    = Channel{Group1, 39}
	EFuseError             = Channel{Group1, 40}
	EFuseSelfTestError     = Channel{Group1, 41}
	DCC2                   = Channel{Group1, 62}
)

// Group 2: errors that always raise a high level interrupt and drive the
// error pin.
var (
	CCMR4Lockstep              = Channel{Group2, 2}
	FMCUncorrectableParity     = Channel{Group2, 4}
	RAMEvenUncorrectableDecode = Channel{Group2, 6}
	RAMOddUncorrectableDecode  = Channel{Group2, 8}
	RAMEvenParity              = Channel{Group2, 10}
	RAMOddParity               = Channel{Group2, 12}
	TCMLock                    = Channel{Group2, 16}
	WindowedWatchdog           = Channel{Group2, 24}
)

// Group 3: errors that only drive the error pin. The uncorrectable ECC
// errors arrive at the CPU as aborts.
var (
	EFuseAutoload           = Channel{Group3, 1}
	RAMEvenUncorrectableECC = Channel{Group3, 3}
	RAMOddUncorrectableECC  = Channel{Group3, 5}
	FMCUncorrectableECC     = Channel{Group3, 7}
)

var channelNames = map[Channel]string{
	MibADC2RAM:                 "MibADC2 RAM",
	DMAMPU:                     "DMA MPU",
	DMAParity:                  "DMA parity",
	DMAErrorImprecise:          "DMA imprecise",
	FMCError:                   "FMC error",
	N2HET1Parity:               "N2HET1 parity",
	HETTUxParity:               "HET TU1/TU2 parity",
	HETTUxMPU:                  "HET TU1/TU2 MPU",
	PLL1Slip:                   "PLL1 slip",
	OscFail:                    "oscillator fail",
	DMAErrorPrecise:            "DMA precise",
	VIMParity:                  "VIM RAM parity",
	MibSPI1Parity:              "MibSPI1 parity",
	MibSPI3Parity:              "MibSPI3 parity",
	MibADC1Parity:              "MibADC1 parity",
	DCAN1Parity:                "DCAN1 parity",
	DCAN3Parity:                "DCAN3 parity",
	DCAN2Parity:                "DCAN2 parity",
	MibSPI5Parity:              "MibSPI5 parity",
	RAMEvenCorrectableECC:      "RAM even bank correctable ECC",
	CPUSelfTest:                "CPU self-test",
	RAMOddCorrectableECC:       "RAM odd bank correctable ECC",
	DCC1:                       "DCC1",
	CCMR4SelfTest:              "CCM-R4 self-test",
	N2HET2Parity:               "N2HET2 parity",
	FMCCorrectableECC:          "FMC correctable ECC",
	FMCUncorrectableECCBus:     "FMC uncorrectable ECC (bus master)",
	IOMMAccess:                 "IOMM access",
	PowerDomainCompare:         "power domain compare",
	PowerDomainSelfTest:        "power domain self-test",
	EFuseError:                 "eFuse error",
	EFuseSelfTestError:         "eFuse self-test",
	DCC2:                       "DCC2",
	CCMR4Lockstep:              "CCM-R4 lockstep compare",
	FMCUncorrectableParity:     "FMC uncorrectable parity",
	RAMEvenUncorrectableDecode: "RAM even bank address decode",
	RAMOddUncorrectableDecode:  "RAM odd bank address decode",
	RAMEvenParity:              "RAM even bank address parity",
	RAMOddParity:               "RAM odd bank address parity",
	TCMLock:                    "TCM lock",
	WindowedWatchdog:           "windowed watchdog",
	EFuseAutoload:              "eFuse autoload",
	RAMEvenUncorrectableECC:    "RAM even bank uncorrectable ECC",
	RAMOddUncorrectableECC:     "RAM odd bank uncorrectable ECC",
	FMCUncorrectableECC:        "FMC uncorrectable ECC",
}

func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return fmt.Sprintf("%s/%d (%s)", c.Group, c.Number, name)
	}
	return fmt.Sprintf("%s/%d", c.Group, c.Number)
}

// Channels returns every named channel ordered by group and number.
func Channels() []Channel {
	channels := make([]Channel, 0, len(channelNames))
	for ch := range channelNames {
		channels = append(channels, ch)
	}
	slices.SortFunc(channels, func(a, b Channel) bool {
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Number < b.Number
	})
	return channels
}

// Name returns the descriptive name of a named channel.
func (c Channel) Name() (string, bool) {
	name, ok := channelNames[c]
	return name, ok
}

// ChannelFromIndex converts a flat channel index as reported by the offset
// registers into a channel. Indices 0-31 are group 1, 32-63 group 2, 64-95
// group 3 and 96-127 group 4.
//
//go:nosplit
func ChannelFromIndex(index uint8) (Channel, bool) {
	if index > 127 {
		return Channel{}, false
	}
	return Channel{Group: Group(index / 32), Number: index % 32}, true
}

// Bank selects one of the two status register sets.
type Bank uint8

const (
	BankSR1 Bank = iota
	BankSR4
)

// Location is the status register bit that latches a channel.
type Location struct {
	Bank  Bank
	Index int
	Bit   uint
	// Valid is false for groups without a status register.
	Valid bool
}

// StatusLocation returns the status register bit of the channel.
//
// Numbers below 31 live in SR1 of the group. Everything else, including
// number 31, lives in SR4 at bit (number-32) modulo 32, which places number
// 31 at SR4 bit 31. Error records on deployed devices follow this
// placement, so it is kept.
//
//go:nosplit
func (c Channel) StatusLocation() Location {
	loc := Location{Index: int(c.Group), Valid: c.Group < Group4}
	if c.Number < 31 {
		loc.Bank = BankSR1
		loc.Bit = uint(c.Number)
	} else {
		loc.Bank = BankSR4
		loc.Bit = uint(c.Number-32) & 31
	}
	return loc
}
