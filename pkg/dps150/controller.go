package dps150

import (
	"io"

	"github.com/golang/glog"
)

// ReadBufferSize is the size of a single transport read in Poll.
const ReadBufferSize = 4096

// Controller speaks the protocol with one device over a byte stream.
// It's owned by a single goroutine, nothing is locked inside.
type Controller struct {
	rw      io.ReadWriter
	baud    int
	state   State
	decoder *Decoder
	readBuf []byte
}

// Option customizes a Controller.
type Option func(*Controller)

// WithBaud sets the bit rate announced during Initialize.
func WithBaud(baud int) Option {
	return func(c *Controller) { c.baud = baud }
}

// WithBufferLimit bounds the receive buffer.
func WithBufferLimit(limit int) Option {
	return func(c *Controller) { c.decoder.Buffer.Limit = limit }
}

// WithInfoHandler receives identification strings.
func WithInfoHandler(h InfoHandler) Option {
	return func(c *Controller) { c.decoder.Info = h }
}

// NewController creates a Controller over rw.
func NewController(rw io.ReadWriter, opts ...Option) *Controller {
	c := &Controller{rw: rw, baud: 115200}
	c.decoder = NewDecoder(&c.state)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize sends the session setup sequence, followed by requests for
// identification and a full snapshot. Replies arrive through Poll.
func (c *Controller) Initialize() error {
	baudIndex := BaudIndex(c.baud)
	if baudIndex == 0 {
		baudIndex = BaudIndex(115200)
	}
	frames := []Frame{
		Encode(HeaderOutput, CmdSession, 0, 1),
		Encode(HeaderOutput, CmdBaud, 0, baudIndex),
		Encode(HeaderOutput, CmdGet, FieldModelName, 0),
		Encode(HeaderOutput, CmdGet, FieldHardwareVersion, 0),
		Encode(HeaderOutput, CmdGet, FieldFirmwareVersion, 0),
		Encode(HeaderOutput, CmdGet, FieldAll, 0),
	}
	for _, f := range frames {
		if err := c.send(f); err != nil {
			return err
		}
	}
	return nil
}

// Close ends the session on the device side. The transport is untouched.
func (c *Controller) Close() error {
	return c.send(Encode(HeaderOutput, CmdSession, 0, 0))
}

// Get requests the value of a field.
func (c *Controller) Get(field Field) error {
	return c.send(Encode(HeaderOutput, CmdGet, field, 0))
}

// SetByte sets a single byte field.
func (c *Controller) SetByte(field Field, val byte) error {
	return c.send(Encode(HeaderOutput, CmdSet, field, val))
}

// RequestAll requests the full snapshot.
func (c *Controller) RequestAll() error {
	return c.Get(FieldAll)
}

// Enable turns on the output.
func (c *Controller) Enable() error {
	return c.SetByte(FieldOutputEnable, 1)
}

// Disable turns off the output.
func (c *Controller) Disable() error {
	return c.SetByte(FieldOutputEnable, 0)
}

// SetBrightness sets the display brightness.
func (c *Controller) SetBrightness(val byte) error {
	return c.SetByte(FieldBrightness, val)
}

// SetVolume sets the beeper volume.
func (c *Controller) SetVolume(val byte) error {
	return c.SetByte(FieldVolume, val)
}

// SetMetering turns metering on or off.
func (c *Controller) SetMetering(on bool) error {
	var val byte
	if on {
		val = 1
	}
	return c.SetByte(FieldMeteringEnable, val)
}

// Poll reads once from the transport and decodes what's received.
// Read failures are reported as no update.
func (c *Controller) Poll() bool {
	if c.readBuf == nil {
		c.readBuf = make([]byte, ReadBufferSize)
	}
	n, err := c.rw.Read(c.readBuf)
	if err != nil {
		glog.V(2).Infof("uart read: %v", err)
	}
	if n <= 0 {
		return false
	}
	return c.Feed(c.readBuf[:n])
}

// Feed decodes bytes received from the transport.
func (c *Controller) Feed(data []byte) bool {
	glog.V(2).Infof("uart recv: % X", data)
	return c.decoder.Decode(data)
}

// Snapshot returns the last-known state.
func (c *Controller) Snapshot() Snapshot {
	return c.state.Snapshot()
}

// Stats returns decoder counters.
func (c *Controller) Stats() Stats {
	return c.decoder.Stats()
}

func (c *Controller) send(f Frame) error {
	glog.V(2).Infof("uart send: % X", f[:])
	_, err := f.WriteTo(c.rw)
	return err
}
