package dps150

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFloat32At(t *testing.T) {
	payload := append([]byte{0x00, 0x00, 0x80, 0x3f}, PutFloat32(12.5)...)
	v, err := Float32At(payload, 0)
	require.NoError(t, err)
	require.Equal(t, float32(1), v)
	v, err = Float32At(payload, 4)
	require.NoError(t, err)
	require.Equal(t, float32(12.5), v)

	// unaligned offsets are fine.
	v, err = Float32At(append([]byte{0xaa}, payload...), 1)
	require.NoError(t, err)
	require.Equal(t, float32(1), v)

	for _, off := range []int{-1, 5, 8} {
		_, err = Float32At(payload, off)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrShortPayload))
	}
}

func TestByteAt(t *testing.T) {
	b, err := ByteAt([]byte{1, 2}, 1)
	require.NoError(t, err)
	require.Equal(t, byte(2), b)
	_, err = ByteAt([]byte{1, 2}, 2)
	require.True(t, errors.Is(err, ErrShortPayload))

	on, err := BoolAt([]byte{1}, 0)
	require.NoError(t, err)
	require.True(t, on)
	on, err = BoolAt([]byte{2}, 0)
	require.NoError(t, err)
	require.False(t, on)
}

func TestTextOf(t *testing.T) {
	s, err := TextOf([]byte("DPS-150\x00\x00"))
	require.NoError(t, err)
	require.Equal(t, "DPS-150", s)
	_, err = TextOf([]byte{0xff, 0xfe})
	require.True(t, errors.Is(err, ErrBadText))
}
