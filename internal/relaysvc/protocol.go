package relaysvc

import (
	"bytes"
	"fmt"

	"github.com/relayhid/relayctl/internal/hidtrans"
)

// Feature-report layout fixed by the relay firmware. Every exchange is a
// 9-byte frame under report id 1. The same report carries the serial number
// after the report id and the port state bitmask in the last byte.
const (
	relayReportID   = 1
	relayReportLen  = 9
	stateByteOffset = 7

	opPortOn  = 0xFF
	opPortOff = 0xFD
)

// readSerial fetches the device-reported serial number: ASCII bytes after
// the report id, NUL-padded. A failed read is an error, never a zeroed
// serial.
func readSerial(dev hidtrans.Device) (string, error) {
	buf, err := dev.GetFeatureReport(relayReportID, relayReportLen)
	if err != nil {
		return "", fmt.Errorf("failed to read serial number report: %w", err)
	}
	if len(buf) < 2 {
		return "", fmt.Errorf("short serial number report: %d bytes", len(buf))
	}
	serial := buf[1:]
	if i := bytes.IndexByte(serial, 0); i >= 0 {
		serial = serial[:i]
	}
	return string(serial), nil
}

// readPortStates fetches the on/off bitmask for all ports. Bit i of the
// result is the state of port i+1. A failed read is an error; it must never
// be conflated with a legitimately all-off mask.
func readPortStates(dev hidtrans.Device) (PortMask, error) {
	buf, err := dev.GetFeatureReport(relayReportID, relayReportLen)
	if err != nil {
		return 0, fmt.Errorf("failed to read port state report: %w", err)
	}
	if len(buf) <= stateByteOffset {
		return 0, fmt.Errorf("short port state report: %d bytes", len(buf))
	}
	return PortMask(buf[stateByteOffset]), nil
}

// encodePortCommand builds the command frame switching a single 1-based
// port: unused report id, opcode, port number, zero padding.
func encodePortCommand(port int, on bool) []byte {
	frame := make([]byte, relayReportLen)
	if on {
		frame[1] = opPortOn
	} else {
		frame[1] = opPortOff
	}
	frame[2] = byte(port)
	return frame
}

// writePortState switches a single port on an open device.
func writePortState(dev hidtrans.Device, port int, on bool) error {
	frame := encodePortCommand(port, on)
	n, err := dev.Write(frame)
	if err != nil {
		return fmt.Errorf("failed to write port %d command: %w", port, err)
	}
	if n < len(frame) {
		return fmt.Errorf("short write for port %d command: %d of %d bytes", port, n, len(frame))
	}
	return nil
}
