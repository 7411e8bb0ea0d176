package startup

import (
	"errors"
	"fmt"
)

var (
	ErrEFuseAutoload   = errors.New("eFuse autoload error")
	ErrEFuseIncomplete = errors.New("eFuse self-test did not complete")
	ErrEFuseUnreliable = errors.New("eFuse self-test failed")
	ErrClockSupervisor = errors.New("oscillator failure not detected")
	ErrPBIST           = errors.New("memory self-test failed")
	ErrCPUSelfTest     = errors.New("CPU self-test failed")
	ErrSTCSelfCheck    = errors.New("CPU self-test controller missed an inserted fault")
	ErrLockstep        = errors.New("lockstep compare self-test failed")
	ErrSelfTestPending = errors.New("CPU self-test did not reset the core")
)

// FatalError is a startup failure after which the device must not run.
type FatalError struct {
	Phase Phase
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("startup halted in %s: %v", e.Phase, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
