package quic

import (
    "bufio"
    "encoding/binary"
    "errors"
    "io"
    "sync"
)

const protocolVersion = 1

// Control stream frame types.
const (
    frameHello   byte = 1
    frameVerdict byte = 2
    frameData    byte = 3
)

var errFrameSize = errors.New("quic: invalid frame size")

// hello is the first frame a client writes on its control stream.
type hello struct {
    Version uint8  `cbor:"v" json:"v"`
    Key     string `cbor:"k" json:"k"`
}

// verdict answers an accepted hello. Rejections close the connection with
// codeRejected instead.
type verdict struct {
    Accepted bool `cbor:"a" json:"a"`
    PeerID   int  `cbor:"p" json:"p"`
}

// frameStream carries u32 LE length-prefixed frames: len(type+body), type, body.
// Writes are buffered until flush. One reader goroutine at a time.
type frameStream struct {
    br  *bufio.Reader
    wmu sync.Mutex
    bw  *bufio.Writer
    max int
}

func newFrameStream(rw io.ReadWriter, max int) *frameStream {
    return &frameStream{br: bufio.NewReader(rw), bw: bufio.NewWriter(rw), max: max}
}

func (f *frameStream) write(typ byte, body []byte) error {
    f.wmu.Lock(); defer f.wmu.Unlock()
    var hdr [5]byte
    binary.LittleEndian.PutUint32(hdr[:4], uint32(len(body)+1))
    hdr[4] = typ
    if _, err := f.bw.Write(hdr[:]); err != nil { return err }
    _, err := f.bw.Write(body)
    return err
}

func (f *frameStream) flush() error {
    f.wmu.Lock(); defer f.wmu.Unlock()
    return f.bw.Flush()
}

// read returns the next frame. The body is freshly allocated.
func (f *frameStream) read() (byte, []byte, error) {
    var lenbuf [4]byte
    if _, err := io.ReadFull(f.br, lenbuf[:]); err != nil { return 0, nil, err }
    n := int(binary.LittleEndian.Uint32(lenbuf[:]))
    if n < 1 || n > f.max+1 { return 0, nil, errFrameSize }
    buf := make([]byte, n)
    if _, err := io.ReadFull(f.br, buf); err != nil { return 0, nil, err }
    return buf[0], buf[1:], nil
}
