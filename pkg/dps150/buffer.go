package dps150

import "github.com/golang/glog"

// Buffer limits
const (
	// DefaultBufferLimit bounds the bytes kept for frame extraction.
	DefaultBufferLimit = 64 * 1024
	// MaxInputFrameSize is the longest frame the device can send:
	// header, command, field, length, 255 payload bytes and checksum.
	MaxInputFrameSize = 4 + 255 + 1
)

// StreamBuffer accumulates received bytes across reads.
// It's not safe for concurrent use.
type StreamBuffer struct {
	// Limit caps the buffered bytes, oldest bytes are dropped beyond it.
	// Zero means DefaultBufferLimit, values below MaxInputFrameSize are
	// raised to it so any single frame still fits.
	Limit int

	data    []byte
	dropped uint64
}

// Append adds received bytes.
func (b *StreamBuffer) Append(p []byte) {
	b.data = append(b.data, p...)
	if over := len(b.data) - b.limit(); over > 0 {
		glog.Warningf("stream buffer over %d bytes, drop %d oldest bytes", b.limit(), over)
		b.dropped += uint64(over)
		b.Discard(over)
	}
}

func (b *StreamBuffer) limit() int {
	switch {
	case b.Limit <= 0:
		return DefaultBufferLimit
	case b.Limit < MaxInputFrameSize:
		return MaxInputFrameSize
	}
	return b.Limit
}

// Bytes returns the buffered bytes, valid until next modification.
func (b *StreamBuffer) Bytes() []byte {
	return b.data
}

// Len returns the number of buffered bytes.
func (b *StreamBuffer) Len() int {
	return len(b.data)
}

// Discard drops n bytes from the front.
func (b *StreamBuffer) Discard(n int) {
	if n <= 0 {
		return
	}
	if n >= len(b.data) {
		b.data = b.data[:0]
		return
	}
	// compact in place so the backing array doesn't creep forward.
	b.data = b.data[:copy(b.data, b.data[n:])]
}

// Reset drops all bytes.
func (b *StreamBuffer) Reset() {
	b.data = b.data[:0]
}

// Dropped returns the number of bytes dropped due to Limit.
func (b *StreamBuffer) Dropped() uint64 {
	return b.dropped
}
