// Package tms570 contains the drivers of the safety and system modules of
// the TMS570LS/RM4x family: error signaling, reset causes, clocks, the self
// test engines, the interrupt manager and the watchdog.
package tms570

import "omibyte.io/hercules/mmio"

// Memory map of the modules.
const (
	ESMBase       = 0xFFFFF500
	SysExcAddr    = 0xFFFFFFE4
	Sys1Base      = 0xFFFFFF00
	Sys2Base      = 0xFFFFE100
	LPOTrimAddr   = 0xF00801B4
	PBISTBase     = 0xFFFFE560
	CCMBase       = 0xFFFFF600
	STCBase       = 0xFFFFE600
	CRCBase       = 0xFE000000
	RTIBase       = 0xFFFFFC00
	TCRAM1Base    = 0xFFFFF800
	TCRAM2Base    = 0xFFFFF900
	FlashBase     = 0xFFF87000
	EFuseBase     = 0xFFF8C000
	PCRBase       = 0xFFFFE000
	VIMParityBase = 0xFFFFFDEC
	VIMBase       = 0xFFFFFE00
	VIMRAMBase    = 0xFFF82000
	VIMParityRAM  = 0xFFF82400
)

// Chip groups the handles of every module on one bus.
type Chip struct {
	Bus    mmio.Bus
	ESM    *ESM
	SysExc *SystemException
	Sys    *Sys
	PBIST  *PBIST
	CCM    *CCM
	STC    *STC
	CRC    *CRC
	DWD    *Watchdog
	TCRAM1 *TCRAM // even bank
	TCRAM2 *TCRAM // odd bank
	Flash  *Flash
	EFuse  *EFuse
	PCR    *PCR
	VIM    *VIM
}

// New creates the handles of every module on bus. Use mmio.Hardware on the
// device.
func New(bus mmio.Bus) *Chip {
	sys := newSys(bus, Sys1Base, Sys2Base, LPOTrimAddr)
	return &Chip{
		Bus:    bus,
		ESM:    newESM(bus, ESMBase),
		SysExc: newSystemException(bus, SysExcAddr),
		Sys:    sys,
		PBIST:  newPBIST(bus, PBISTBase, sys),
		CCM:    newCCM(bus, CCMBase),
		STC:    newSTC(bus, STCBase, sys),
		CRC:    newCRC(bus, CRCBase),
		DWD:    newWatchdog(bus, RTIBase),
		TCRAM1: newTCRAM(bus, TCRAM1Base),
		TCRAM2: newTCRAM(bus, TCRAM2Base),
		Flash:  newFlash(bus, FlashBase),
		EFuse:  newEFuse(bus, EFuseBase),
		PCR:    newPCR(bus, PCRBase),
		VIM:    newVIM(bus, VIMParityBase, VIMBase, VIMRAMBase, VIMParityRAM),
	}
}
