package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
)

// scriptSource runs a Lua script that programs the chip directly:
//
//	write(reg, value)  store value in register reg
//	wait(cycles)       let time pass, crossing frame boundaries as needed
//	frame()            wait until the start of the next frame
//	freq(note)         frequency register value of note 0-95
//	FRAME_CYCLES       length of one frame in cycles
//
// The script runs in its own goroutine and hands over each frame as soon
// as it is complete.
type scriptSource struct {
	frames chan *Frame
	errc   chan error
	cancel context.CancelFunc

	err error
}

// scriptState is owned by the script goroutine.
type scriptState struct {
	ctx         context.Context
	frames      chan<- *Frame
	notes       *NoteTable
	frameCycles int

	cur *Frame
	pos int
}

func openScript(fs afero.Fs, path string, notes *NoteTable, frameCycles int) (*scriptSource, error) {
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return newScriptSource(path, string(src), notes, frameCycles), nil
}

func newScriptSource(name, src string, notes *NoteTable, frameCycles int) *scriptSource {
	ctx, cancel := context.WithCancel(context.Background())
	s := &scriptSource{
		frames: make(chan *Frame),
		errc:   make(chan error, 1),
		cancel: cancel,
	}
	st := &scriptState{
		ctx:         ctx,
		frames:      s.frames,
		notes:       notes,
		frameCycles: frameCycles,
		cur:         &Frame{Cycles: frameCycles},
	}
	go func() {
		defer close(s.frames)
		err := st.run(src)
		if err != nil && ctx.Err() == nil {
			s.errc <- fmt.Errorf("%s: %w", name, err)
			return
		}
		s.errc <- nil
	}()
	return s
}

func (st *scriptState) run(src string) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(st.ctx)

	L.SetGlobal("FRAME_CYCLES", lua.LNumber(st.frameCycles))
	L.SetGlobal("write", L.NewFunction(st.luaWrite))
	L.SetGlobal("wait", L.NewFunction(st.luaWait))
	L.SetGlobal("frame", L.NewFunction(st.luaFrame))
	L.SetGlobal("freq", L.NewFunction(st.luaFreq))

	if err := L.DoString(src); err != nil {
		return err
	}
	// A partly filled frame is played to its end.
	if len(st.cur.Writes) > 0 || st.pos > 0 {
		return st.emit()
	}
	return nil
}

func (st *scriptState) luaWrite(L *lua.LState) int {
	reg := L.CheckInt(1)
	val := L.CheckInt(2)
	if reg < 0 || reg > 0x1f {
		L.ArgError(1, "register out of range")
	}
	if val < 0 || val > 0xff {
		L.ArgError(2, "value out of range")
	}
	st.cur.Writes = append(st.cur.Writes, RegWrite{Cycle: uint32(st.pos), Addr: byte(reg), Value: byte(val)})
	return 0
}

func (st *scriptState) luaWait(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 0 {
		L.ArgError(1, "negative wait")
	}
	if err := st.wait(n); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (st *scriptState) luaFrame(L *lua.LState) int {
	if err := st.wait(st.frameCycles - st.pos); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (st *scriptState) luaFreq(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 0 || n >= numNotes {
		L.ArgError(1, "note out of range")
	}
	L.Push(lua.LNumber(st.notes[n]))
	return 1
}

func (st *scriptState) wait(n int) error {
	st.pos += n
	for st.pos >= st.frameCycles {
		st.pos -= st.frameCycles
		if err := st.emit(); err != nil {
			return err
		}
	}
	return nil
}

// emit hands the current frame to the reader and starts the next one.
func (st *scriptState) emit() error {
	select {
	case st.frames <- st.cur:
	case <-st.ctx.Done():
		return st.ctx.Err()
	}
	st.cur = &Frame{Cycles: st.frameCycles}
	return nil
}

func (s *scriptSource) NextFrame() (*Frame, error) {
	if f, ok := <-s.frames; ok {
		return f, nil
	}
	if s.err == nil {
		s.err = io.EOF
		if err := <-s.errc; err != nil {
			s.err = err
		}
	}
	return nil, s.err
}

// Close stops the script and waits for it to finish.
func (s *scriptSource) Close() error {
	s.cancel()
	for range s.frames {
	}
	return nil
}
