package dps150

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// chunkedStream replays chunks, one per Read, and records writes.
type chunkedStream struct {
	chunks   [][]byte
	errs     []error
	written  bytes.Buffer
	writeErr error
}

func (s *chunkedStream) Read(p []byte) (int, error) {
	if len(s.chunks) == 0 {
		return 0, io.EOF
	}
	chunk, err := s.chunks[0], s.errs[0]
	s.chunks, s.errs = s.chunks[1:], s.errs[1:]
	return copy(p, chunk), err
}

func (s *chunkedStream) Write(p []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	return s.written.Write(p)
}

func (s *chunkedStream) feed(chunk []byte, err error) *chunkedStream {
	s.chunks = append(s.chunks, chunk)
	s.errs = append(s.errs, err)
	return s
}

func hexFrames(frames ...Frame) []byte {
	var b []byte
	for _, f := range frames {
		b = append(b, f[:]...)
	}
	return b
}

func TestControllerInitialize(t *testing.T) {
	s := &chunkedStream{}
	c := NewController(s)
	require.NoError(t, c.Initialize())
	require.Equal(t, []byte{
		0xf1, 0xc1, 0x00, 0x01, 0x01, 0x02,
		0xf1, 0xb0, 0x00, 0x01, 0x05, 0x06,
		0xf1, 0xa1, 0xde, 0x01, 0x00, 0xdf,
		0xf1, 0xa1, 0xdf, 0x01, 0x00, 0xe0,
		0xf1, 0xa1, 0xe0, 0x01, 0x00, 0xe1,
		0xf1, 0xa1, 0xff, 0x01, 0x00, 0x00,
	}, s.written.Bytes())
}

func TestControllerInitializeBaud(t *testing.T) {
	s := &chunkedStream{}
	require.NoError(t, NewController(s, WithBaud(9600)).Initialize())
	require.Equal(t, []byte{0xf1, 0xb0, 0x00, 0x01, 0x01, 0x02}, s.written.Bytes()[6:12])
}

func TestControllerCommands(t *testing.T) {
	testCases := []struct {
		name   string
		fn     func(*Controller) error
		expect Frame
	}{
		{"enable", (*Controller).Enable, Encode(HeaderOutput, CmdSet, FieldOutputEnable, 1)},
		{"disable", (*Controller).Disable, Encode(HeaderOutput, CmdSet, FieldOutputEnable, 0)},
		{"request all", (*Controller).RequestAll, Encode(HeaderOutput, CmdGet, FieldAll, 0)},
		{"close", (*Controller).Close, Encode(HeaderOutput, CmdSession, 0, 0)},
		{"brightness", func(c *Controller) error { return c.SetBrightness(8) }, Encode(HeaderOutput, CmdSet, FieldBrightness, 8)},
		{"volume", func(c *Controller) error { return c.SetVolume(3) }, Encode(HeaderOutput, CmdSet, FieldVolume, 3)},
		{"metering", func(c *Controller) error { return c.SetMetering(true) }, Encode(HeaderOutput, CmdSet, FieldMeteringEnable, 1)},
		{"get", func(c *Controller) error { return c.Get(FieldTemperature) }, Encode(HeaderOutput, CmdGet, FieldTemperature, 0)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := &chunkedStream{}
			require.NoError(t, tc.fn(NewController(s)))
			require.Equal(t, hexFrames(tc.expect), s.written.Bytes())
		})
	}
	require.Equal(t, []byte{0xf1, 0xb1, 0xdb, 0x01, 0x01, 0xdd}, hexFrames(Encode(HeaderOutput, CmdSet, FieldOutputEnable, 1)))
}

func TestControllerWriteError(t *testing.T) {
	errBroken := errors.New("broken")
	s := &chunkedStream{writeErr: errBroken}
	c := NewController(s)
	require.Equal(t, errBroken, c.Initialize())
	require.Equal(t, errBroken, c.Enable())
}

func TestControllerPoll(t *testing.T) {
	frame := reply(FieldInputVoltage, 0x00, 0x00, 0x80, 0x3f)
	s := (&chunkedStream{}).
		feed(frame[:3], nil).
		feed(nil, errors.New("timeout")).
		feed(frame[3:], nil).
		feed(reply(FieldOutputEnable, 1), io.ErrUnexpectedEOF)
	c := NewController(s)
	require.False(t, c.Poll())
	require.False(t, c.Poll())
	require.True(t, c.Poll())
	require.Equal(t, float32(1), c.Snapshot().InputVoltage)
	// bytes returned along with an error are still decoded.
	require.True(t, c.Poll())
	require.True(t, c.Snapshot().OutputClosed)
	require.False(t, c.Poll())
	require.Equal(t, uint64(2), c.Stats().Frames)
}

func TestControllerFeedInfo(t *testing.T) {
	var model string
	c := NewController(&chunkedStream{}, WithBufferLimit(256), WithInfoHandler(HandleInfoFunc(func(f Field, s string) {
		if f == FieldModelName {
			model = s
		}
	})))
	require.True(t, c.Feed(reply(FieldModelName, []byte("DPS-150")...)))
	require.Equal(t, "DPS-150", model)
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{SetVoltage: 5, OutputClosed: true}
	str := s.String()
	require.Contains(t, str, "set_voltage:5.00\n")
	require.Contains(t, str, "output_closed:true\n")
	require.Contains(t, str, "temperature:0.00\n")
}
