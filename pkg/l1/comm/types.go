package comm

import "github.com/robotalks/degu.go/pkg/transport"

// PacketReader reads packets in bytes.
type PacketReader = transport.PacketReader

// PacketWriter writes packets in bytes.
type PacketWriter = transport.PacketWriter

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter = transport.PacketReadWriter
