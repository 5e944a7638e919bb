package main

// RegWrite is one store to a SID register. Cycle is the offset from the
// start of the frame in chip cycles.
type RegWrite struct {
	Cycle uint32
	Addr  byte
	Value byte
}

// Frame is the unit of playback: the register writes of one player
// call, in order, and the number of chip cycles until the next call.
type Frame struct {
	Writes []RegWrite
	Cycles int

	// CPUCycles is the time the player routine took, when known.
	CPUCycles uint64
}

// FrameSource produces frames until it returns io.EOF.
type FrameSource interface {
	NextFrame() (*Frame, error)
	Close() error
}
