package transport

import (
	"fmt"
	"net/url"
	"strconv"

	"go.bug.st/serial"
)

// DefaultBaudRate is used when the serial URL doesn't specify one.
const DefaultBaudRate = 115200

// SerialConfig parses serial:///dev/ttyACM0?baud=115200.
func SerialConfig(u *url.URL) (string, *serial.Mode, error) {
	port := u.Path
	if port == "" {
		port = u.Opaque
	}
	if port == "" {
		return "", nil, fmt.Errorf("serial port missing in %q", u.String())
	}
	mode := &serial.Mode{
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	if val := u.Query().Get("baud"); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil || baud <= 0 {
			return "", nil, fmt.Errorf("invalid baud rate %q", val)
		}
		mode.BaudRate = baud
	}
	return port, mode, nil
}

func dialSerial(u *url.URL) (Conn, error) {
	name, mode, err := SerialConfig(u)
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return Datagrams(NewStream(port), port), nil
}
