package dps150

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Float32At decodes a little-endian IEEE-754 float at off.
func Float32At(payload []byte, off int) (float32, error) {
	if off < 0 || off+4 > len(payload) {
		return 0, &FieldError{Offset: off, Err: ErrShortPayload}
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(payload[off:])), nil
}

// ByteAt returns the byte at off.
func ByteAt(payload []byte, off int) (byte, error) {
	if off < 0 || off >= len(payload) {
		return 0, &FieldError{Offset: off, Err: ErrShortPayload}
	}
	return payload[off], nil
}

// BoolAt decodes a flag byte, only 1 is true.
func BoolAt(payload []byte, off int) (bool, error) {
	b, err := ByteAt(payload, off)
	return b == 1, err
}

// TextOf decodes a text payload, trailing NULs are dropped.
func TextOf(payload []byte) (string, error) {
	payload = bytes.TrimRight(payload, "\x00")
	if !utf8.Valid(payload) {
		return "", &FieldError{Err: ErrBadText}
	}
	return string(payload), nil
}

// PutFloat32 encodes v as 4 little-endian bytes.
func PutFloat32(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}
