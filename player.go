package main

import (
	"io"
	"log"

	"github.com/beevik/go6502/cpu"
)

const MAX_INSTR = 0xFFFF

// psidSource runs a PSID tune on an emulated 6502 and turns each call of
// its play routine into a frame.
type psidSource struct {
	cpu *cpu.CPU
	bus *sidBus

	playAddress uint16
	frameCycles int

	// initWrites are the stores of the init routine, played at the start
	// of the first frame.
	initWrites []RegWrite

	// trace, when set, receives the CPU state after every instruction.
	trace io.Writer
}

// newPSIDSource loads tune into memory and runs its init routine for
// subtune (zero based).
func newPSIDSource(tune *SidTune, subtune int, ntsc bool, trace io.Writer) *psidSource {
	c, bus := NewCpu()
	s := &psidSource{cpu: c, bus: bus, frameCycles: palFrameCycles, trace: trace}
	if ntsc {
		s.frameCycles = ntscFrameCycles
	}

	for i, b := range tune.Data {
		bus.FlatMemory.StoreByte(tune.LoadAddress+uint16(i), b)
	}

	// Print info and run initroutine
	log.Printf("Calling initroutine with subtune %d", subtune)
	bus.StoreByte(0x01, 0x37)
	bus.startFrame()
	InitCpu(c, tune.InitAddress, uint8(subtune), 0, 0)
	instr := 0

	for s.step() {
		IncAtAddress(c, 0xD012)
		if c.Mem.LoadByte(0xD012) == 0 || c.Mem.LoadByte(0xD011)&0x80 != 0 && c.Mem.LoadByte(0xD012) >= 0x38 {
			tmp := c.Mem.LoadByte(0xD011)
			tmp ^= 0x80
			c.Mem.StoreByte(0xD011, tmp)
			c.Mem.StoreByte(0xD012, 0x0)
		}
		instr++

		if instr > MAX_INSTR {
			log.Print("Warning: CPU executed a high number of instructions in init, breaking")
			break
		}
	}

	for _, w := range bus.writes {
		s.initWrites = append(s.initWrites, RegWrite{Addr: w.Addr, Value: w.Value})
	}

	s.playAddress = tune.PlayAddress
	if s.playAddress == 0 {
		log.Print("Warning: SID has play address 0, reading from interrupt vector instead")
		if c.Mem.LoadByte(0x01)&0x07 == 0x5 {
			s.playAddress = loadWord(c, 0xFFFE)
		} else {
			s.playAddress = loadWord(c, 0x314)
		}
		log.Printf("New play address is $%04X", s.playAddress)
	}
	return s
}

func (s *psidSource) step() bool {
	running := RunCpu(s.cpu)
	if s.trace != nil {
		DumpCpuState(s.trace, s.cpu)
	}
	return running
}

// NextFrame calls the play routine once. The frame lasts one video frame
// unless the player has programmed CIA 1 timer A.
func (s *psidSource) NextFrame() (*Frame, error) {
	c := s.cpu
	s.bus.startFrame()
	start := c.Cycles

	instr := 0
	InitCpu(c, s.playAddress, 0, 0, 0)
	for s.step() {
		instr++
		if instr > MAX_INSTR {
			log.Print("Warning: CPU executed a high number of instructions in playroutine, breaking")
			break
		}

		// Test for jump into Kernal interrupt handler exit
		if c.Mem.LoadByte(0x01)&0x07 != 0x5 && (c.Reg.PC == 0xEA31 || c.Reg.PC == 0xEA81) {
			break
		}
	}

	f := &Frame{
		Writes:    append(s.initWrites, s.bus.writes...),
		Cycles:    s.frameCycles,
		CPUCycles: c.Cycles - start,
	}
	s.initWrites = nil
	if timer := int(loadWord(c, 0xDC04)); timer != 0 {
		f.Cycles = timer
	}
	return f, nil
}

func (s *psidSource) Close() error { return nil }
