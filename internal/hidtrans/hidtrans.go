// Package hidtrans defines the transport capability set the relay core
// consumes: enumerate HID devices on the bus and exchange feature reports
// with one of them. The production implementation lives in the hidapi
// subpackage; tests substitute in-memory fakes.
package hidtrans

// DeviceInfo describes one enumerated HID device.
type DeviceInfo struct {
	// Path is the opaque transport-level address used to open the device.
	// It is stable for the life of the connection.
	Path string
	// Product is the device-reported product identifier string.
	Product string
}

// Transport enumerates HID devices and opens them by path.
type Transport interface {
	Enumerate() ([]DeviceInfo, error)
	Open(path string) (Device, error)
}

// Device is an open HID device handle.
type Device interface {
	// GetFeatureReport requests a feature report of the given size for
	// reportID. The returned buffer includes the report id byte.
	GetFeatureReport(reportID byte, size int) ([]byte, error)
	// Write sends an output report and returns the number of bytes written.
	Write(data []byte) (int, error)
	Close() error
}
