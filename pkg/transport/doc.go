// Package transport provides datagram connections for the CoAP engine.
//
// Every Conn preserves datagram boundaries: one Write sends one datagram
// and one Read receives one datagram, truncated to the read buffer.
// Stream transports (TCP, serial) frame each datagram with a 4-byte
// little-endian length prefix.
package transport
