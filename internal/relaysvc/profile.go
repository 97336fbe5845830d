package relaysvc

import (
	"strconv"
	"strings"
)

// Profile describes how a relay family advertises itself on the bus. The
// detection scheme is a vendor-string convention, not a negotiated protocol,
// so it is kept as data to let other relay families register their own
// marker without code changes.
type Profile struct {
	// Name identifies the relay family.
	Name string `yaml:"name"`
	// Marker is the product-string prefix relay-class devices carry. A
	// matching product string is strictly longer than the marker and the
	// text after it is the decimal port count.
	Marker string `yaml:"marker"`
}

// DefaultProfile matches the common "USBRelayN" family.
var DefaultProfile = Profile{
	Name:   "usbrelay",
	Marker: "USBRelay",
}

// Match reports whether product identifies a device of this family.
func (p Profile) Match(product string) bool {
	return len(product) > len(p.Marker) && strings.HasPrefix(product, p.Marker)
}

// PortCount extracts the declared port count from a matching product string.
// It returns 0 when the suffix is not a positive number.
func (p Profile) PortCount(product string) int {
	if !p.Match(product) {
		return 0
	}
	n, err := strconv.Atoi(product[len(p.Marker):])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
