package tms570

import "omibyte.io/hercules/mmio"

// CCMMode is the operating mode selected through the CCM key register.
type CCMMode uint32

const (
	CCMLockstep             CCMMode = 0x0
	CCMSelfTest             CCMMode = 0x6
	CCMErrorForcing         CCMMode = 0x9
	CCMSelfTestErrorForcing CCMMode = 0xF
)

const (
	ccmsrSTE  = 1 << 0  // self-test error
	ccmsrSTET = 1 << 1  // self-test error type
	ccmsrSTC  = 1 << 8  // self-test complete
	ccmsrCMPE = 1 << 16 // compare error
)

// CCM is the CPU compare module that checks the two lockstep cores.
type CCM struct {
	mmio.NoCopy

	CCMSR   mmio.Register // status
	CCMKEYR mmio.Register // key
}

func newCCM(bus mmio.Bus, base uintptr) *CCM {
	blk := mmio.NewBlock(bus, base)
	return &CCM{
		CCMSR:   blk.Reg(0x00),
		CCMKEYR: blk.Reg(0x04),
	}
}

func (c *CCM) SetMode(mode CCMMode) {
	c.CCMKEYR.Set(uint32(mode))
}

func (c *CCM) Mode() CCMMode {
	return CCMMode(c.CCMKEYR.Get() & 0xF)
}

// CompareError reports whether the cores have diverged.
func (c *CCM) CompareError() bool {
	return c.CCMSR.HasBits(ccmsrCMPE)
}

// ClearCompareError clears the compare error flag.
func (c *CCM) ClearCompareError() {
	c.CCMSR.Set(ccmsrCMPE)
}

// SelfTestErrorType returns true when the last self-test failed during the
// compare match phase, false for the compare mismatch phase.
func (c *CCM) SelfTestErrorType() bool {
	return c.CCMSR.HasBits(ccmsrSTET)
}

// SelfTest runs the CCM self-test followed by the two error forcing tests
// that prove the error path to the ESM works. The VIM must report the ESM
// high level interrupt as pending FIQ after the error forcing test. It
// returns false on any deviation; the device must not continue in that case.
func (c *CCM) SelfTest(esm *ESM, vim *VIM) bool {
	c.SetMode(CCMSelfTest)

	// Wait for the self-test to complete
	mmio.WaitSet(c.CCMSR, ccmsrSTC)

	if c.CCMSR.HasBits(ccmsrSTE) {
		return false
	}
	if esm.ErrorIsSet(CCMR4SelfTest) {
		return false
	}

	c.SetMode(CCMErrorForcing)

	// Wait for the error forcing to complete
	mmio.WaitEqual(c.CCMKEYR, uint32(CCMLockstep))

	if !esm.ErrorIsSet(CCMR4Lockstep) || vim.FIQIndex() != 1 {
		return false
	}

	esm.ClearError(CCMR4Lockstep)
	esm.ShadowStatusClear(Group2)
	esm.ClearError(CCMR4SelfTest)
	esm.ErrorReset()

	c.SetMode(CCMSelfTestErrorForcing)

	// Wait for the self-test error forcing to complete
	mmio.WaitEqual(c.CCMKEYR, uint32(CCMLockstep))

	if !esm.ErrorIsSet(CCMR4SelfTest) {
		return false
	}
	esm.ClearError(CCMR4SelfTest)

	return true
}
