package tdf_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mau.fi/tdesktop/tdf"
)

func TestStream(t *testing.T) {
	var payload []byte
	payload = append(payload, 0x00, 0x00, 0x01, 0x02)
	payload = tdf.AppendBuffer(payload, []byte("meow"))
	payload = append(payload, 0xDE, 0xAD)

	stream := tdf.NewStream(payload)
	val, err := stream.ReadUint32()
	require.NoError(t, err)
	assert.EqualValues(t, 0x0102, val)

	buf, err := stream.ReadBuffer()
	require.NoError(t, err)
	assert.Equal(t, []byte("meow"), buf)
	assert.Equal(t, 2, stream.Remaining())

	require.NoError(t, stream.Skip(2))
	assert.Zero(t, stream.Remaining())

	_, err = stream.ReadUint32()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestStream_TruncatedBuffer(t *testing.T) {
	payload := tdf.AppendBuffer(nil, []byte("meow"))
	stream := tdf.NewStream(payload[:len(payload)-1])
	_, err := stream.ReadBuffer()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
