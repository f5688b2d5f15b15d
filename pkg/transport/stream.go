package transport

import (
	"encoding/binary"
	"io"
	"sync"
)

// MaxFrameLen bounds the length prefix accepted from a stream.
const MaxFrameLen = 64 * 1024

// StreamReadWriter implements PacketReadWriter on a byte stream.
// Each packet is prefixed by 4 bytes (little-endian) indicating the length.
type StreamReadWriter struct {
	io.ReadWriter

	writeLock sync.Mutex
}

// NewStream creates a StreamReadWriter.
func NewStream(s io.ReadWriter) *StreamReadWriter {
	return &StreamReadWriter{ReadWriter: s}
}

// ReadPacket implements PacketReader.
func (p *StreamReadWriter) ReadPacket() ([]byte, error) {
	var head [4]byte
	if _, err := io.ReadFull(p.ReadWriter, head[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(head[:])
	if size > MaxFrameLen {
		return nil, ErrFrameTooLarge
	}
	pkt := make([]byte, size)
	if _, err := io.ReadFull(p.ReadWriter, pkt); err != nil {
		return nil, err
	}
	return pkt, nil
}

// WritePacket implements PacketWriter. The frame is written with a single
// Write so it isn't interleaved on the wire.
func (p *StreamReadWriter) WritePacket(pkt []byte) error {
	if len(pkt) > MaxFrameLen {
		return ErrFrameTooLarge
	}
	frame := make([]byte, 4+len(pkt))
	binary.LittleEndian.PutUint32(frame, uint32(len(pkt)))
	copy(frame[4:], pkt)
	p.writeLock.Lock()
	defer p.writeLock.Unlock()
	_, err := p.Write(frame)
	return err
}
