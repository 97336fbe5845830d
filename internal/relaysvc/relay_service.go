// Package relaysvc implements the core of relayctl: discovery of USB HID
// power relays, the feature-report protocol spoken with them and the
// orchestration of status, on, off and power-cycle actions.
package relaysvc

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/relayhid/relayctl/internal/hidtrans"
)

// Action selects what to do with the addressed ports.
type Action int

const (
	ActionStatus Action = iota
	ActionOff
	ActionOn
	ActionCycle
)

func (a Action) String() string {
	switch a {
	case ActionOff:
		return "off"
	case ActionOn:
		return "on"
	case ActionCycle:
		return "cycle"
	}
	return "status"
}

// ParseAction maps the CLI action argument to an Action. Both the named and
// the numeric forms are accepted: off/0, on/1, cycle/2.
func ParseAction(s string) (Action, error) {
	switch {
	case strings.EqualFold(s, "off"), s == "0":
		return ActionOff, nil
	case strings.EqualFold(s, "on"), s == "1":
		return ActionOn, nil
	case strings.EqualFold(s, "cycle"), s == "2":
		return ActionCycle, nil
	}
	return ActionStatus, fmt.Errorf("invalid power action: %s", s)
}

// PortState is the result of a single port state read. StateUnknown means
// the read failed; it is reported as such, never as off.
type PortState int

const (
	StateOff PortState = iota
	StateOn
	StateUnknown
)

func (s PortState) String() string {
	switch s {
	case StateOn:
		return "1 ON"
	case StateOff:
		return "0 OFF"
	}
	return "? unknown"
}

// DefaultCycleDelay separates the off and on phases of a power cycle.
const DefaultCycleDelay = 2 * time.Second

var defaultOptions = serviceOptions{
	sleep:    time.Sleep,
	out:      os.Stdout,
	errOut:   os.Stderr,
	advisory: runtime.GOOS == "linux",
}

type serviceOptions struct {
	sleep    func(time.Duration)
	out      io.Writer
	errOut   io.Writer
	advisory bool
}

type Option func(*serviceOptions)

// WithSleep replaces the blocking sleep used between power-cycle phases.
func WithSleep(fn func(time.Duration)) Option {
	return func(o *serviceOptions) {
		o.sleep = fn
	}
}

// WithOutput sets the writer receiving status report lines.
func WithOutput(w io.Writer) Option {
	return func(o *serviceOptions) {
		o.out = w
	}
}

// WithErrOutput sets the writer receiving advisory diagnostics.
func WithErrOutput(w io.Writer) Option {
	return func(o *serviceOptions) {
		o.errOut = w
	}
}

// WithAdvisory controls whether the permission remediation hint is printed
// when a relay could not be opened.
func WithAdvisory(enabled bool) Option {
	return func(o *serviceOptions) {
		o.advisory = enabled
	}
}

// Service owns one discovery pass and the actions performed against its
// result. It is single-threaded and holds no device handle between
// operations.
type Service struct {
	log       *zap.Logger
	transport hidtrans.Transport
	profiles  []Profile
	options   serviceOptions
}

func New(log *zap.Logger, transport hidtrans.Transport, profiles []Profile, opts ...Option) *Service {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if len(profiles) == 0 {
		profiles = []Profile{DefaultProfile}
	}
	return &Service{
		log:       log,
		transport: transport,
		profiles:  profiles,
		options:   options,
	}
}

// Request is one fully parsed invocation: which relay, which ports, what to
// do with them. It is immutable once built from CLI input.
type Request struct {
	Serial string
	Path   string
	Ports  PortMask
	Action Action
	Delay  time.Duration
}

// Run performs one discovery pass and executes the requested action against
// its result.
func (s *Service) Run(req Request) error {
	reg, err := s.Discover(req.Serial, req.Path)
	if err != nil {
		return err
	}
	if reg.AccessDenied && s.options.advisory {
		s.printAdvisory()
	}
	return s.Execute(reg, req)
}

// Execute runs the requested action. Status reports every discovered relay;
// mutating actions require the registry to hold exactly one relay.
func (s *Service) Execute(reg *Registry, req Request) error {
	if len(reg.Relays) == 0 {
		return ErrNoRelaysFound
	}
	if req.Action == ActionStatus {
		for i := range reg.Relays {
			s.printStatus(&reg.Relays[i], req.Ports)
		}
		return nil
	}
	if len(reg.Relays) > 1 {
		return fmt.Errorf("%w, choose one to operate on with --relay: %s",
			ErrAmbiguousRelay, strings.Join(reg.Serials(), ", "))
	}
	relay := &reg.Relays[0]
	// A power cycle is a fixed off-then-on sequence: the ports must be
	// known-off before being turned back on to guarantee a real power
	// transition.
	for _, on := range [2]bool{false, true} {
		if !on && req.Action == ActionOn {
			continue
		}
		if on && req.Action == ActionOff {
			continue
		}
		for port := 1; port <= relay.Ports; port++ {
			if !req.Ports.Has(port) {
				continue
			}
			if err := s.setPortState(relay, port, on); err != nil {
				return fmt.Errorf("cannot set new state for port %d: %w", port, err)
			}
		}
		s.printStatus(relay, req.Ports)
		if !on && req.Action == ActionCycle {
			s.log.Debug("waiting between power cycle phases", zap.Duration("delay", req.Delay))
			s.options.sleep(req.Delay)
		}
	}
	return nil
}

// setPortState opens the relay, issues one switch command and closes it
// again.
func (s *Service) setPortState(relay *Relay, port int, on bool) error {
	dev, err := s.transport.Open(relay.Path)
	if err != nil {
		return fmt.Errorf("unable to open relay at [%s]: %w", relay.Path, err)
	}
	defer dev.Close()
	return writePortState(dev, port, on)
}

// portState reads the state of a single port. Any communication failure
// yields StateUnknown.
func (s *Service) portState(relay *Relay, port int) PortState {
	dev, err := s.transport.Open(relay.Path)
	if err != nil {
		s.log.Warn("unable to open relay for state read",
			zap.String("path", relay.Path),
			zap.Error(err))
		return StateUnknown
	}
	defer dev.Close()
	states, err := readPortStates(dev)
	if err != nil {
		s.log.Warn("failed to read port state",
			zap.String("path", relay.Path),
			zap.Int("port", port),
			zap.Error(err))
		return StateUnknown
	}
	if states.Has(port) {
		return StateOn
	}
	return StateOff
}

func (s *Service) printStatus(relay *Relay, mask PortMask) {
	fmt.Fprintf(s.options.out, "Status for relay %s at [%s], %d ports:\n",
		relay.Serial, relay.Path, relay.Ports)
	for port := 1; port <= relay.Ports; port++ {
		if !mask.Has(port) {
			continue
		}
		fmt.Fprintf(s.options.out, "  Port %d: %s\n", port, s.portState(relay, port))
	}
}

// printAdvisory emits the permission remediation hint once per run. It is
// advisory output only and does not change the exit status.
func (s *Service) printAdvisory() {
	fmt.Fprint(s.options.errOut,
		"There were permission problems while accessing USB.\n"+
			"To fix this, run this tool as root using 'sudo relayctl',\n"+
			"or add one or more udev rules like below\n"+
			"to file '/etc/udev/rules.d/52-usb.rules':\n"+
			"SUBSYSTEM==\"usb\", ATTR{idVendor}==\"16c0\", MODE=\"0666\"\n"+
			"then run 'sudo udevadm trigger --attr-match=subsystem=usb'\n")
}
