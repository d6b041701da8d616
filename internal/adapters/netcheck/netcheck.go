// Package netcheck decides whether remote calls are allowed right now.
// The auto mode inspects network interfaces and only trusts wifi and
// ethernet class links; forced modes exist for configuration and tests.
package netcheck

import (
	"io"
	"net"
	"strings"

	"github.com/bnema/teamsync-cli/internal/ports"
	"github.com/charmbracelet/log"
)

type Mode string

const (
	// ModeAuto trusts the network when an up, non-loopback interface with a
	// trusted name prefix carries an address.
	ModeAuto Mode = "auto"
	// ModeOnline forces every check to pass.
	ModeOnline Mode = "online"
	// ModeOffline forces every check to fail.
	ModeOffline Mode = "offline"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAuto:
		return ModeAuto, true
	case ModeOnline:
		return ModeOnline, true
	case ModeOffline:
		return ModeOffline, true
	}
	return "", false
}

// DefaultTrustedPrefixes match the common linux names for wifi (wl*) and
// wired (en*, eth*) interfaces. Cellular tethers (wwan*, usb*) stay out.
var DefaultTrustedPrefixes = []string{"wl", "en", "eth"}

type Checker struct {
	mode       Mode
	prefixes   []string
	interfaces func() ([]net.Interface, error)
	addrs      func(net.Interface) ([]net.Addr, error)
	logger     *log.Logger
}

var _ ports.Connectivity = (*Checker)(nil)

func New(mode Mode, prefixes []string, logger *log.Logger) *Checker {
	if len(prefixes) == 0 {
		prefixes = DefaultTrustedPrefixes
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Checker{
		mode:       mode,
		prefixes:   prefixes,
		interfaces: net.Interfaces,
		addrs:      func(iface net.Interface) ([]net.Addr, error) { return iface.Addrs() },
		logger:     logger,
	}
}

func (c *Checker) IsOnTrustedNetwork() bool {
	switch c.mode {
	case ModeOnline:
		return true
	case ModeOffline:
		return false
	}

	ifaces, err := c.interfaces()
	if err != nil {
		c.logger.Warn("interface enumeration failed, treating network as untrusted", "error", err)
		return false
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if !c.trustedName(iface.Name) {
			continue
		}
		addrs, err := c.addrs(iface)
		if err != nil || len(addrs) == 0 {
			continue
		}
		return true
	}
	return false
}

func (c *Checker) trustedName(name string) bool {
	for _, prefix := range c.prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
