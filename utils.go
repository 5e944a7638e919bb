package main

import (
	"encoding/binary"
	"io"
)

func readByte(r io.Reader) (byte, error) {
	var res byte
	err := binary.Read(r, binary.LittleEndian, &res)
	return res, err
}

// readWord reads a big-endian word, the byte order of the PSID header.
func readWord(r io.Reader) (uint16, error) {
	var res uint16
	err := binary.Read(r, binary.BigEndian, &res)
	return res, err
}

func absInt(x int) int {
	return absDiffInt(x, 0)
}

func absDiffInt(x, y int) int {
	if x < y {
		return y - x
	}
	return x - y
}
