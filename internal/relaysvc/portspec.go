package relaysvc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxPorts is the largest port number any supported relay exposes.
const MaxPorts = 8

var (
	ErrPortOutOfRange = errors.New("port number out of range")
	ErrBadRangeOrder  = errors.New("first port of a range must not be greater than the last")
)

// PortMask addresses a subset of a relay's ports. Bit i represents port i+1;
// the bit/port conversion lives here and in the protocol codec only.
type PortMask uint32

// AllPorts returns a mask with every port from 1 up to n set.
func AllPorts(n int) PortMask {
	return PortMask(1)<<uint(n) - 1
}

func (m PortMask) Has(port int) bool {
	return m&(1<<uint(port-1)) != 0
}

func (m *PortMask) Set(port int) {
	*m |= 1 << uint(port-1)
}

func (m *PortMask) Clear(port int) {
	*m &^= 1 << uint(port-1)
}

// Ports returns the 1-based port numbers set in the mask up to max, ascending.
func (m PortMask) Ports(max int) []int {
	var ports []int
	for port := 1; port <= max; port++ {
		if m.Has(port) {
			ports = append(ports, port)
		}
	}
	return ports
}

// ParsePorts converts a port list specification into a mask. The following
// specifications are equivalent:
//
//	1,3,4,5,11,12,13
//	1,3-5,11-13
//
// The empty string and "all" select every port up to maxPort. Malformed specs
// are configuration errors; no recovery is attempted.
func ParsePorts(spec string, maxPort int) (PortMask, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, "all") {
		return AllPorts(maxPort), nil
	}
	var mask PortMask
	for _, token := range strings.Split(spec, ",") {
		first, last, err := parsePortRange(strings.TrimSpace(token), maxPort)
		if err != nil {
			return 0, err
		}
		for port := first; port <= last; port++ {
			mask.Set(port)
		}
	}
	return mask, nil
}

// parsePortRange parses a single token, either a port number or a closed
// range "a-b".
func parsePortRange(token string, maxPort int) (int, int, error) {
	firstStr, lastStr, isRange := strings.Cut(token, "-")
	first, err := strconv.Atoi(strings.TrimSpace(firstStr))
	if err != nil {
		return 0, 0, fmt.Errorf("bad port spec %q: %w", token, err)
	}
	last := first
	if isRange {
		last, err = strconv.Atoi(strings.TrimSpace(lastStr))
		if err != nil {
			return 0, 0, fmt.Errorf("bad port spec %q: %w", token, err)
		}
	}
	if first > last {
		return 0, 0, fmt.Errorf("bad port spec %d-%d: %w", first, last, ErrBadRangeOrder)
	}
	if first < 1 || last > maxPort {
		return 0, 0, fmt.Errorf("bad port spec %q, port numbers must be from 1 to %d: %w", token, maxPort, ErrPortOutOfRange)
	}
	return first, last, nil
}
