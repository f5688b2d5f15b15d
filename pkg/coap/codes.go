package coap

import "fmt"

// Version is the only protocol version supported.
const Version byte = 1

// Type is the message type.
type Type byte

// Message types.
const (
	Confirmable     Type = 0
	NonConfirmable  Type = 1
	Acknowledgement Type = 2
	Reset           Type = 3
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case Confirmable:
		return "CON"
	case NonConfirmable:
		return "NON"
	case Acknowledgement:
		return "ACK"
	case Reset:
		return "RST"
	}
	return fmt.Sprintf("Type(%d)", byte(t))
}

// Code is a method or response code, encoded as class.detail (3.5 bits).
type Code byte

// NewCode builds a code from class and detail.
func NewCode(class, detail byte) Code {
	return Code((class&0x7)<<5 | detail&0x1f)
}

// Methods.
const (
	Empty  Code = 0x00
	GET    Code = 0x01
	POST   Code = 0x02
	PUT    Code = 0x03
	DELETE Code = 0x04
)

// Response codes.
const (
	Created               Code = 0x41 // 2.01
	Deleted               Code = 0x42 // 2.02
	Valid                 Code = 0x43 // 2.03
	Changed               Code = 0x44 // 2.04
	Content               Code = 0x45 // 2.05
	BadRequest            Code = 0x80 // 4.00
	Unauthorized          Code = 0x81 // 4.01
	BadOption             Code = 0x82 // 4.02
	Forbidden             Code = 0x83 // 4.03
	NotFound              Code = 0x84 // 4.04
	MethodNotAllowed      Code = 0x85 // 4.05
	RequestEntityTooLarge Code = 0x8d // 4.13
	InternalServerError   Code = 0xa0 // 5.00
	NotImplemented        Code = 0xa1 // 5.01
	ServiceUnavailable    Code = 0xa3 // 5.03
)

// SuccessThreshold is the lowest successful response code (2.00).
const SuccessThreshold Code = 0x40

// Class returns the 3-bit class.
func (c Code) Class() byte {
	return byte(c) >> 5
}

// Detail returns the 5-bit detail.
func (c Code) Detail() byte {
	return byte(c) & 0x1f
}

// IsMethod indicates the code is a request method.
func (c Code) IsMethod() bool {
	return c.Class() == 0 && c != Empty
}

// IsSuccess indicates the code is in the 2.xx class.
func (c Code) IsSuccess() bool {
	return c.Class() == 2
}

// String implements fmt.Stringer.
func (c Code) String() string {
	switch c {
	case GET:
		return "GET"
	case POST:
		return "POST"
	case PUT:
		return "PUT"
	case DELETE:
		return "DELETE"
	}
	return fmt.Sprintf("%d.%02d", c.Class(), c.Detail())
}

// OptionID is the option number.
type OptionID uint16

// Options understood by this package.
const (
	IfMatch       OptionID = 1
	URIHost       OptionID = 3
	ETag          OptionID = 4
	IfNoneMatch   OptionID = 5
	URIPort       OptionID = 7
	LocationPath  OptionID = 8
	URIPath       OptionID = 11
	ContentFormat OptionID = 12
	MaxAge        OptionID = 14
	URIQuery      OptionID = 15
	Accept        OptionID = 17
	LocationQuery OptionID = 20
	Size1         OptionID = 60
)

// Option is a parsed option.
type Option struct {
	ID    OptionID
	Value []byte
}

const (
	// TokenLen is the token length used for every request.
	TokenLen = 8
	// MaxMessageLen is the default capacity of a transaction buffer.
	MaxMessageLen = 256

	headerLen     = 4
	payloadMarker = 0xff
)
