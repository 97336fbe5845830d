package relaysvc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDevice returns a canned feature report and records writes.
type stubDevice struct {
	buf      []byte
	readErr  error
	wrote    [][]byte
	writeN   int
	writeErr error
}

func (d *stubDevice) GetFeatureReport(reportID byte, size int) ([]byte, error) {
	if d.readErr != nil {
		return nil, d.readErr
	}
	return d.buf, nil
}

func (d *stubDevice) Write(data []byte) (int, error) {
	frame := make([]byte, len(data))
	copy(frame, data)
	d.wrote = append(d.wrote, frame)
	return d.writeN, d.writeErr
}

func (d *stubDevice) Close() error {
	return nil
}

func TestEncodePortCommand(t *testing.T) {
	assert.Equal(t, []byte{0, 0xff, 3, 0, 0, 0, 0, 0, 0}, encodePortCommand(3, true))
	assert.Equal(t, []byte{0, 0xfd, 8, 0, 0, 0, 0, 0, 0}, encodePortCommand(8, false))
}

func TestReadSerial(t *testing.T) {
	dev := &stubDevice{buf: []byte{1, 'A', '0', '0', '0', '1', 0, 0x05, 0}}
	serial, err := readSerial(dev)
	require.NoError(t, err)
	assert.Equal(t, "A0001", serial)
}

func TestReadSerialErrors(t *testing.T) {
	dev := &stubDevice{readErr: errors.New("io error")}
	_, err := readSerial(dev)
	assert.Error(t, err)

	dev = &stubDevice{buf: []byte{1}}
	_, err = readSerial(dev)
	assert.Error(t, err)
}

func TestReadPortStates(t *testing.T) {
	dev := &stubDevice{buf: []byte{1, 'A', '0', '0', '0', '1', 0, 0b101, 0}}
	states, err := readPortStates(dev)
	require.NoError(t, err)
	assert.True(t, states.Has(1))
	assert.False(t, states.Has(2))
	assert.True(t, states.Has(3))
}

func TestReadPortStatesErrors(t *testing.T) {
	// A read failure must be distinguishable from an all-off result.
	dev := &stubDevice{readErr: errors.New("io error")}
	_, err := readPortStates(dev)
	assert.Error(t, err)

	dev = &stubDevice{buf: []byte{1, 0, 0}}
	_, err = readPortStates(dev)
	assert.Error(t, err)
}

func TestWritePortState(t *testing.T) {
	dev := &stubDevice{writeN: relayReportLen}
	require.NoError(t, writePortState(dev, 2, true))
	require.Len(t, dev.wrote, 1)
	assert.Equal(t, []byte{0, 0xff, 2, 0, 0, 0, 0, 0, 0}, dev.wrote[0])
}

func TestWritePortStateErrors(t *testing.T) {
	dev := &stubDevice{writeN: -1, writeErr: errors.New("io error")}
	assert.Error(t, writePortState(dev, 1, false))

	dev = &stubDevice{writeN: 4}
	assert.Error(t, writePortState(dev, 1, false))
}
