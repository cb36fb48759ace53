package quic

import (
    "bytes"
    "encoding/binary"
    "testing"

    "github.com/stretchr/testify/require"
)

func TestFrameStreamRoundTrip(t *testing.T) {
    var buf bytes.Buffer
    fs := newFrameStream(&buf, 1024)
    require.NoError(t, fs.write(frameData, []byte("hello")))
    require.NoError(t, fs.write(frameData, nil))
    require.Zero(t, buf.Len(), "writes are buffered until flush")
    require.NoError(t, fs.flush())

    typ, body, err := fs.read()
    require.NoError(t, err)
    require.Equal(t, frameData, typ)
    require.Equal(t, []byte("hello"), body)

    typ, body, err = fs.read()
    require.NoError(t, err)
    require.Equal(t, frameData, typ)
    require.Empty(t, body)
}

func TestFrameStreamRejectsOversized(t *testing.T) {
    var buf bytes.Buffer
    var hdr [4]byte
    binary.LittleEndian.PutUint32(hdr[:], 2048)
    buf.Write(hdr[:])
    fs := newFrameStream(&buf, 1024)
    _, _, err := fs.read()
    require.ErrorIs(t, err, errFrameSize)
}

func TestFrameStreamRejectsEmpty(t *testing.T) {
    buf := bytes.NewBuffer(make([]byte, 4))
    fs := newFrameStream(buf, 1024)
    _, _, err := fs.read()
    require.ErrorIs(t, err, errFrameSize)
}
