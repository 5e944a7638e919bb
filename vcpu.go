package main

import (
	"fmt"
	"io"

	"github.com/beevik/go6502/cpu"
)

const (
	sidBase = 0xD400
	sidEnd  = 0xD7FF
)

// sidBus is the C64 address space as seen by the player: flat RAM with
// stores to the SID area captured and stamped with the CPU cycle.
type sidBus struct {
	*cpu.FlatMemory

	cpu        *cpu.CPU
	frameStart uint64
	writes     []RegWrite
}

// StoreByte mirrors every store to memory and records the ones that hit
// a SID register, including its mirrors up to $D7FF.
func (b *sidBus) StoreByte(addr uint16, v byte) {
	b.FlatMemory.StoreByte(addr, v)
	if addr < sidBase || addr > sidEnd {
		return
	}
	var cycle uint32
	if b.cpu != nil {
		cycle = uint32(b.cpu.Cycles - b.frameStart)
	}
	b.writes = append(b.writes, RegWrite{Cycle: cycle, Addr: byte(addr & 0x1f), Value: v})
}

// startFrame clears the captured writes and starts a new cycle count.
func (b *sidBus) startFrame() {
	b.writes = b.writes[:0]
	if b.cpu != nil {
		b.frameStart = b.cpu.Cycles
	}
}

func NewCpu() (*cpu.CPU, *sidBus) {
	bus := &sidBus{FlatMemory: cpu.NewFlatMemory()}
	CPU := cpu.NewCPU(cpu.NMOS, bus)
	bus.cpu = CPU
	return CPU, bus
}

func InitCpu(cpu *cpu.CPU, newpc uint16, newa uint8, newx uint8, newy uint8) *cpu.CPU {
	cpu.SetPC(newpc)
	cpu.Reg.X = newx
	cpu.Reg.Y = newy
	cpu.Reg.A = newa
	// The routine returns through an RTS with an empty stack.
	cpu.Reg.SP = 0xFF
	return cpu
}

// RunCpu executes one instruction and reports whether the routine is
// still running: BRK, and RTI or RTS with an empty stack, end it.
func RunCpu(cpu *cpu.CPU) bool {
	cpu.Step()

	// Peek at the next opcode at the current PC
	opcode := cpu.Mem.LoadByte(cpu.Reg.PC)

	// Look up the instruction data for the opcode
	inst := cpu.InstSet.Lookup(opcode)

	switch {
	case inst.Opcode == 0x00:
		return false
	case inst.Opcode == 0x40 && cpu.Reg.SP == 0xFF:
		return false
	case inst.Opcode == 0x60 && cpu.Reg.SP == 0xFF:
		return false
	}
	return true
}

// loadWord reads a little-endian word.
func loadWord(cpu *cpu.CPU, adr uint16) uint16 {
	return uint16(cpu.Mem.LoadByte(adr)) | uint16(cpu.Mem.LoadByte(adr+1))<<8
}

func IncAtAddress(cpu *cpu.CPU, adr uint16) {
	cpu.Mem.StoreByte(adr, cpu.Mem.LoadByte(adr)+1)
}

func DumpCpuState(w io.Writer, cpu *cpu.CPU) {
	fmt.Fprintf(w, "PC: %04x OP: %02x A:%02x X:%02x Y:%02x\n", cpu.LastPC, cpu.Mem.LoadByte(cpu.LastPC), cpu.Reg.A, cpu.Reg.X, cpu.Reg.Y)
}
