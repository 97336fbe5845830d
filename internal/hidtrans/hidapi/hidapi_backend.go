// Package hidapi implements hidtrans.Transport on top of the hidapi library.
package hidapi

import (
	"fmt"

	"github.com/sstallion/go-hid"
	"go.uber.org/zap"

	"github.com/relayhid/relayctl/internal/hidtrans"
)

// Backend talks to the operating system HID stack through hidapi.
type Backend struct {
	log *zap.Logger
}

func NewBackend(log *zap.Logger) *Backend {
	return &Backend{log: log}
}

// Init initializes the hidapi library. It must be called before any other
// method and paired with Exit.
func (b *Backend) Init() error {
	return hid.Init()
}

func (b *Backend) Exit() error {
	return hid.Exit()
}

func (b *Backend) Enumerate() ([]hidtrans.DeviceInfo, error) {
	var devices []hidtrans.DeviceInfo
	err := hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		b.log.Debug("enumerated HID device",
			zap.String("path", info.Path),
			zap.String("product", info.ProductStr))
		devices = append(devices, hidtrans.DeviceInfo{
			Path:    info.Path,
			Product: info.ProductStr,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate HID devices: %w", err)
	}
	return devices, nil
}

func (b *Backend) Open(path string) (hidtrans.Device, error) {
	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, err
	}
	return &hidapiDevice{dev: dev}, nil
}

type hidapiDevice struct {
	dev *hid.Device
}

func (h *hidapiDevice) GetFeatureReport(reportID byte, size int) ([]byte, error) {
	buf := make([]byte, size)
	buf[0] = reportID
	n, err := h.dev.GetFeatureReport(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (h *hidapiDevice) Write(data []byte) (int, error) {
	return h.dev.Write(data)
}

func (h *hidapiDevice) Close() error {
	return h.dev.Close()
}
