package cpu

import (
	"errors"
	"fmt"
)

// StackSize is the number of return addresses the stack can hold.
const StackSize = 12

var (
	// ErrStackOverflow is the fault raised by a call with a full stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is the fault raised by a return with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
)

// pushStack stores the address in the next free slot, then moves sp up.
func (c *CPU) pushStack(address uint16) error {
	if int(c.sp) >= StackSize {
		return fmt.Errorf("%w: call from 0x%04X with depth %d", ErrStackOverflow, c.pc, c.sp)
	}

	c.stack[c.sp] = address
	c.sp++
	return nil
}

// popStack moves sp down, then reads the address there.
func (c *CPU) popStack() (uint16, error) {
	if c.sp == 0 {
		return 0, fmt.Errorf("%w: return at 0x%04X", ErrStackUnderflow, c.pc)
	}

	c.sp--
	return c.stack[c.sp], nil
}
