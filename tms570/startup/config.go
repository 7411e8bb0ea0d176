package startup

import "omibyte.io/hercules/tms570"

// Config selects the optional parts of the startup sequence and the clock
// and flash settings. It is resolved once, before the sequence runs.
type Config struct {
	VFP      bool `yaml:"vfp"`
	Errata57 bool `yaml:"errata57"`
	Errata66 bool `yaml:"errata66"`

	// PBISTROM runs the PBIST over the PBIST and STC ROMs.
	PBISTROM bool `yaml:"pbist_rom"`
	// PBISTRAM runs the PBIST over the CPU RAM. It destroys the RAM
	// content and is skipped when Debug is set.
	PBISTRAM bool `yaml:"pbist_ram"`
	Debug    bool `yaml:"debug"`

	// CPUSelfTest runs the CPU self-test after a power-on reset.
	CPUSelfTest bool `yaml:"cpu_self_test"`
	// STCSelfCheck runs the self-test controller with an inserted fault
	// first. The run has to fail before the real self-test starts.
	STCSelfCheck bool `yaml:"stc_self_check"`
	// CCMSelfTest runs the lockstep compare self-test after the CPU
	// self-test reset.
	CCMSelfTest bool `yaml:"ccm_self_test"`

	STC   STCConfig   `yaml:"stc"`
	Flash FlashConfig `yaml:"flash"`
	Clock ClockConfig `yaml:"clock"`
}

type STCConfig struct {
	Intervals uint16 `yaml:"intervals"`
	Timeout   uint32 `yaml:"timeout"`
}

type FlashConfig struct {
	WaitStates       uint8  `yaml:"wait_states"`
	AddressWaitState bool   `yaml:"address_wait_state"`
	Pipeline         bool   `yaml:"pipeline"`
	Power            string `yaml:"power"`
}

// PowerMode returns the bank fallback power mode, active by default.
func (f FlashConfig) PowerMode() tms570.FlashPower {
	switch f.Power {
	case "sleep":
		return tms570.FlashSleep
	case "standby":
		return tms570.FlashStandby
	}
	return tms570.FlashActive
}

type ClockConfig struct {
	// PLLMultiplier sets the PLL frequency to 16 MHz / 6 * multiplier / 2.
	PLLMultiplier uint32 `yaml:"pll_multiplier"`

	// PLL1Divider and PLL2Divider are the final output dividers.
	PLL1Divider uint8 `yaml:"pll1_divider"`
	PLL2Divider uint8 `yaml:"pll2_divider"`

	VCLK1Divider uint8 `yaml:"vclk1_divider"`
	VCLK2Divider uint8 `yaml:"vclk2_divider"`
	VCLK3Divider uint8 `yaml:"vclk3_divider"`
	VCLK4Divider uint8 `yaml:"vclk4_divider"`

	ECLKDivider uint16 `yaml:"eclk_divider"`
	ECLKOscIn   bool   `yaml:"eclk_oscin"`

	// LPOFallback is the LPO trim used when the OTP holds none.
	LPOFallback uint32 `yaml:"lpo_fallback"`
}

// DefaultConfig is the configuration of a TMS570LS3137 running at 160 MHz
// from a 16 MHz crystal.
//
// The CPU self-test is off. CCMSelfTest only takes effect on the reset that
// ends a CPU self-test, so with the defaults the lockstep compare self-test
// does not run either. Targets that want both set cpu_self_test.
func DefaultConfig() Config {
	return Config{
		VFP:         true,
		Errata66:    true,
		PBISTROM:    true,
		PBISTRAM:    true,
		CCMSelfTest: true,
		STC: STCConfig{
			Intervals: 24,
			Timeout:   0xFFFFFFFF,
		},
		Flash: FlashConfig{
			WaitStates:       3,
			AddressWaitState: false,
			Pipeline:         true,
			Power:            "active",
		},
		Clock: ClockConfig{
			PLLMultiplier: 120,
			PLL1Divider:   0,
			PLL2Divider:   1,
			VCLK1Divider:  1,
			VCLK2Divider:  1,
			VCLK3Divider:  1,
			VCLK4Divider:  1,
			ECLKDivider:   7,
			LPOFallback:   0x000000FF,
		},
	}
}

// Layout is the memory layout produced by the linker.
type Layout struct {
	BSSStart  uintptr
	BSSEnd    uintptr
	DataStart uintptr
	DataEnd   uintptr
	DataLoad  uintptr
	HeapStart uintptr
	HeapSize  uintptr
}
