package relaysvc

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"github.com/relayhid/relayctl/internal/hidtrans"
)

// fakeRelay models one device on the fake bus. Its feature report mirrors
// the firmware layout: serial after the report id, state bitmask in the last
// byte.
type fakeRelay struct {
	product  string
	serial   string
	states   PortMask
	openErr  error
	readErr  error
	writeErr error
}

type fakeEntry struct {
	path  string
	relay *fakeRelay
}

// fakeTransport is an in-memory bus recording every exchange in call order.
type fakeTransport struct {
	entries []fakeEntry
	calls   []string
}

func (t *fakeTransport) add(path string, relay *fakeRelay) *fakeRelay {
	t.entries = append(t.entries, fakeEntry{path: path, relay: relay})
	return relay
}

func (t *fakeTransport) Enumerate() ([]hidtrans.DeviceInfo, error) {
	var infos []hidtrans.DeviceInfo
	for _, e := range t.entries {
		infos = append(infos, hidtrans.DeviceInfo{Path: e.path, Product: e.relay.product})
	}
	return infos, nil
}

func (t *fakeTransport) Open(path string) (hidtrans.Device, error) {
	for _, e := range t.entries {
		if e.path == path {
			if e.relay.openErr != nil {
				return nil, e.relay.openErr
			}
			return &fakeDevice{t: t, path: path, relay: e.relay}, nil
		}
	}
	return nil, fmt.Errorf("no device at %s", path)
}

// writes returns only the write exchanges recorded so far.
func (t *fakeTransport) writes() []string {
	var writes []string
	for _, call := range t.calls {
		if len(call) >= 5 && call[:5] == "write" {
			writes = append(writes, call)
		}
	}
	return writes
}

type fakeDevice struct {
	t     *fakeTransport
	path  string
	relay *fakeRelay
}

func (d *fakeDevice) GetFeatureReport(reportID byte, size int) ([]byte, error) {
	d.t.calls = append(d.t.calls, "read "+d.path)
	if d.relay.readErr != nil {
		return nil, d.relay.readErr
	}
	buf := make([]byte, size)
	buf[0] = reportID
	copy(buf[1:stateByteOffset], d.relay.serial)
	buf[stateByteOffset] = byte(d.relay.states)
	return buf, nil
}

func (d *fakeDevice) Write(frame []byte) (int, error) {
	port := int(frame[2])
	verb := "off"
	if frame[1] == opPortOn {
		verb = "on"
	}
	d.t.calls = append(d.t.calls, fmt.Sprintf("write %s %d %s", verb, port, d.path))
	if d.relay.writeErr != nil {
		return -1, d.relay.writeErr
	}
	if verb == "on" {
		d.relay.states.Set(port)
	} else {
		d.relay.states.Clear(port)
	}
	return len(frame), nil
}

func (d *fakeDevice) Close() error {
	return nil
}

func newTestService(t *fakeTransport, opts ...Option) (*Service, *bytes.Buffer) {
	out := &bytes.Buffer{}
	opts = append([]Option{WithOutput(out), WithAdvisory(false)}, opts...)
	return New(zap.NewNop(), t, nil, opts...), out
}
