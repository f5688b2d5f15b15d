package coap

import (
	"encoding/binary"
	"strings"
)

// Token correlates a reply with its request.
type Token [TokenLen]byte

// Header contains the fixed fields of a message except the token.
type Header struct {
	Type      Type
	Code      Code
	MessageID uint16
}

// Builder encodes a message into a fixed-capacity buffer.
// A Builder never grows the buffer, any write beyond its capacity fails
// with ErrBufferTooSmall and leaves the buffer content unchanged.
type Builder struct {
	buf     []byte
	offset  int
	lastOpt OptionID
	started bool
	marker  bool
}

// NewBuilder creates a Builder using the full capacity of buf.
func NewBuilder(buf []byte) *Builder {
	return &Builder{buf: buf[:cap(buf)]}
}

// Init writes the header and token, resetting previous content.
func (b *Builder) Init(h Header, token []byte) error {
	if len(token) > TokenLen {
		return ErrInvalidToken
	}
	n := headerLen + len(token)
	if n > len(b.buf) {
		return ErrBufferTooSmall
	}
	b.buf[0] = Version<<6 | byte(h.Type&0x3)<<4 | byte(len(token))
	b.buf[1] = byte(h.Code)
	binary.BigEndian.PutUint16(b.buf[2:], h.MessageID)
	copy(b.buf[headerLen:], token)
	b.offset, b.lastOpt, b.started, b.marker = n, 0, true, false
	return nil
}

// AppendOption appends an option. Options must be appended in ascending
// order of their IDs; repeating an ID is allowed.
func (b *Builder) AppendOption(id OptionID, value []byte) error {
	if !b.started {
		return ErrNotInitialized
	}
	if b.marker {
		return ErrPayloadStarted
	}
	if id < b.lastOpt {
		return ErrOptionOrder
	}
	delta, deltaExt := optionNibble(int(id - b.lastOpt))
	length, lengthExt := optionNibble(len(value))
	n := 1 + len(deltaExt) + len(lengthExt) + len(value)
	if b.offset+n > len(b.buf) {
		return ErrBufferTooSmall
	}
	p := b.buf[b.offset:]
	p[0] = delta<<4 | length
	p = p[1:]
	p = p[copy(p, deltaExt):]
	p = p[copy(p, lengthExt):]
	copy(p, value)
	b.offset += n
	b.lastOpt = id
	return nil
}

// AppendPayloadMarker appends the payload marker.
func (b *Builder) AppendPayloadMarker() error {
	if !b.started {
		return ErrNotInitialized
	}
	if b.marker {
		return ErrPayloadStarted
	}
	if b.offset+1 > len(b.buf) {
		return ErrBufferTooSmall
	}
	b.buf[b.offset] = payloadMarker
	b.offset++
	b.marker = true
	return nil
}

// AppendPayload appends payload bytes after the marker.
func (b *Builder) AppendPayload(payload []byte) error {
	if !b.marker {
		return ErrNoPayloadMarker
	}
	if b.offset+len(payload) > len(b.buf) {
		return ErrBufferTooSmall
	}
	b.offset += copy(b.buf[b.offset:], payload)
	return nil
}

// Len returns the number of encoded bytes.
func (b *Builder) Len() int {
	return b.offset
}

// Bytes returns the encoded message, which shares the underlying buffer.
func (b *Builder) Bytes() []byte {
	return b.buf[:b.offset]
}

// optionNibble returns the 4-bit value and extended bytes for option delta or length.
func optionNibble(v int) (byte, []byte) {
	switch {
	case v < 13:
		return byte(v), nil
	case v < 269:
		return 13, []byte{byte(v - 13)}
	default:
		v -= 269
		return 14, []byte{byte(v >> 8), byte(v)}
	}
}

// Message is a decoded message.
// Token, option values and payload reference the parsed data.
type Message struct {
	Type      Type
	Code      Code
	MessageID uint16
	Token     []byte
	Options   []Option
	Payload   []byte
}

// Option gets the first value of the option.
func (m *Message) Option(id OptionID) ([]byte, bool) {
	for _, opt := range m.Options {
		if opt.ID == id {
			return opt.Value, true
		}
	}
	return nil, false
}

// Path joins all URI-Path options with "/".
func (m *Message) Path() string {
	var segs []string
	for _, opt := range m.Options {
		if opt.ID == URIPath {
			segs = append(segs, string(opt.Value))
		}
	}
	return strings.Join(segs, "/")
}

// Encode encodes the message into buf.
func (m *Message) Encode(buf []byte) ([]byte, error) {
	b := NewBuilder(buf)
	if err := b.Init(Header{Type: m.Type, Code: m.Code, MessageID: m.MessageID}, m.Token); err != nil {
		return nil, err
	}
	for _, opt := range m.Options {
		if err := b.AppendOption(opt.ID, opt.Value); err != nil {
			return nil, err
		}
	}
	if len(m.Payload) > 0 {
		if err := b.AppendPayloadMarker(); err != nil {
			return nil, err
		}
		if err := b.AppendPayload(m.Payload); err != nil {
			return nil, err
		}
	}
	return b.Bytes(), nil
}

// Parse decodes one message.
func Parse(data []byte) (*Message, error) {
	if len(data) < headerLen {
		return nil, ErrTruncated
	}
	if data[0]>>6 != Version {
		return nil, ErrInvalidVersion
	}
	tkl := int(data[0] & 0xf)
	if tkl > TokenLen {
		return nil, ErrInvalidToken
	}
	if len(data) < headerLen+tkl {
		return nil, ErrTruncated
	}
	m := &Message{
		Type:      Type(data[0] >> 4 & 0x3),
		Code:      Code(data[1]),
		MessageID: binary.BigEndian.Uint16(data[2:]),
		Token:     data[headerLen : headerLen+tkl],
	}
	p := data[headerLen+tkl:]
	id := 0
	for len(p) > 0 {
		if p[0] == payloadMarker {
			if len(p) == 1 {
				return nil, ErrEmptyPayload
			}
			m.Payload = p[1:]
			break
		}
		delta, length := int(p[0]>>4), int(p[0]&0xf)
		p = p[1:]
		var err error
		if delta, p, err = extendOption(delta, p); err != nil {
			return nil, err
		}
		if length, p, err = extendOption(length, p); err != nil {
			return nil, err
		}
		if len(p) < length {
			return nil, ErrTruncated
		}
		if id += delta; id > 0xffff {
			return nil, ErrInvalidOption
		}
		m.Options = append(m.Options, Option{ID: OptionID(id), Value: p[:length]})
		p = p[length:]
	}
	return m, nil
}

func extendOption(v int, p []byte) (int, []byte, error) {
	switch v {
	case 13:
		if len(p) < 1 {
			return 0, p, ErrTruncated
		}
		return int(p[0]) + 13, p[1:], nil
	case 14:
		if len(p) < 2 {
			return 0, p, ErrTruncated
		}
		return int(binary.BigEndian.Uint16(p)) + 269, p[2:], nil
	case 15:
		return 0, p, ErrInvalidOption
	}
	return v, p, nil
}
