package relaysvc

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// maxRelays bounds a single discovery pass. Exceeding it indicates a runaway
// enumeration rather than a recoverable condition.
const maxRelays = 64

var (
	ErrTooManyRelays  = errors.New("too many relays")
	ErrNoRelaysFound  = errors.New("no compatible relays detected")
	ErrAmbiguousRelay = errors.New("more than one relay found")
)

// Relay is a discovered physical device. The device is reopened by Path for
// every operation; no handle is held across operations.
type Relay struct {
	Serial string
	Ports  int
	Path   string
}

// Registry is the result of one discovery pass, in enumeration order. It is
// rebuilt fresh on every invocation. AccessDenied is set when at least one
// relay-class device could be enumerated but not opened.
type Registry struct {
	Relays       []Relay
	AccessDenied bool
}

// Serials lists the serial numbers of all discovered relays.
func (r *Registry) Serials() []string {
	serials := make([]string, len(r.Relays))
	for i, relay := range r.Relays {
		serials[i] = relay.Serial
	}
	return serials
}

// Discover enumerates all HID devices, filters to relay-class ones and
// applies the optional serial and bus path constraints. Devices that fail to
// open or to report a serial degrade discovery; they do not abort it.
func (s *Service) Discover(serialFilter, pathFilter string) (*Registry, error) {
	infos, err := s.transport.Enumerate()
	if err != nil {
		return nil, err
	}
	reg := &Registry{}
	for _, info := range infos {
		profile, ok := s.matchProfile(info.Product)
		if !ok {
			continue
		}
		if pathFilter != "" && !strings.EqualFold(info.Path, pathFilter) {
			continue
		}
		dev, err := s.transport.Open(info.Path)
		if err != nil {
			s.log.Warn("unable to open relay",
				zap.String("path", info.Path),
				zap.Error(err))
			reg.AccessDenied = true
			continue
		}
		serial, err := readSerial(dev)
		dev.Close()
		if err != nil {
			s.log.Warn("can't get serial number for relay",
				zap.String("path", info.Path),
				zap.Error(err))
			continue
		}
		if serialFilter != "" && !strings.EqualFold(serial, serialFilter) {
			continue
		}
		ports := profile.PortCount(info.Product)
		if ports < 1 || ports > MaxPorts {
			s.log.Warn("relay declares unusable port count",
				zap.String("path", info.Path),
				zap.String("product", info.Product),
				zap.Int("ports", ports))
			continue
		}
		if len(reg.Relays) >= maxRelays {
			return nil, fmt.Errorf("%w: more than %d enumerated", ErrTooManyRelays, maxRelays)
		}
		reg.Relays = append(reg.Relays, Relay{
			Serial: serial,
			Ports:  ports,
			Path:   info.Path,
		})
		s.log.Debug("discovered relay",
			zap.String("serial", serial),
			zap.String("path", info.Path),
			zap.Int("ports", ports),
			zap.String("profile", profile.Name))
	}
	return reg, nil
}

func (s *Service) matchProfile(product string) (Profile, bool) {
	for _, profile := range s.profiles {
		if profile.Match(product) {
			return profile, true
		}
	}
	return Profile{}, false
}
