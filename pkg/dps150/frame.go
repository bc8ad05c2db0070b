package dps150

import "io"

// FrameSize is the size of every frame sent to the device.
const FrameSize = 6

// Frame is an encoded host -> device frame.
type Frame [FrameSize]byte

// Checksum computes the wrapping sum of bytes.
func Checksum(data ...byte) (sum byte) {
	for _, b := range data {
		sum += b
	}
	return
}

// Encode builds a frame carrying a single byte value.
// Get requests carry 0 as the value.
func Encode(h Header, cmd Command, field Field, val byte) (f Frame) {
	f[0], f[1], f[2], f[3], f[4] = byte(h), byte(cmd), byte(field), 1, val
	f[5] = Checksum(f[2:5]...)
	return
}

// Header returns the direction byte.
func (f Frame) Header() Header { return Header(f[0]) }

// Command returns the command byte.
func (f Frame) Command() Command { return Command(f[1]) }

// Field returns the field byte.
func (f Frame) Field() Field { return Field(f[2]) }

// Value returns the payload byte.
func (f Frame) Value() byte { return f[4] }

// Valid checks the length and checksum of the frame.
func (f Frame) Valid() bool {
	return f[3] == 1 && Checksum(f[2:5]...) == f[5]
}

// Bytes returns encoded bytes for sending.
func (f Frame) Bytes() []byte {
	b := make([]byte, FrameSize)
	copy(b, f[:])
	return b
}

// WriteTo implements io.WriterTo.
func (f Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f[:])
	return int64(n), err
}

// ParseFrame reads an encoded host -> device frame, mostly used for
// echoing and diagnostics.
func ParseFrame(b []byte) (f Frame, ok bool) {
	if len(b) < FrameSize {
		return
	}
	copy(f[:], b)
	return f, f.Header() == HeaderOutput && f.Valid()
}
