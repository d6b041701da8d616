package netcheck

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Mode
		ok    bool
	}{
		{name: "auto", input: "auto", want: ModeAuto, ok: true},
		{name: "online", input: "online", want: ModeOnline, ok: true},
		{name: "offline", input: "offline", want: ModeOffline, ok: true},
		{name: "mixed case with spaces", input: "  Online ", want: ModeOnline, ok: true},
		{name: "unknown", input: "metered", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseMode(tt.input)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForcedModes(t *testing.T) {
	t.Parallel()

	online := New(ModeOnline, nil, nil)
	online.interfaces = func() ([]net.Interface, error) {
		t.Fatal("forced modes must not inspect interfaces")
		return nil, nil
	}
	assert.True(t, online.IsOnTrustedNetwork())

	offline := New(ModeOffline, nil, nil)
	assert.False(t, offline.IsOnTrustedNetwork())
}

func TestAutoModeTrustsWifiAndEthernet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ifaces []net.Interface
		noAddr map[string]bool
		want   bool
	}{
		{
			name: "wifi up with address",
			ifaces: []net.Interface{
				{Name: "lo", Flags: net.FlagUp | net.FlagLoopback},
				{Name: "wlan0", Flags: net.FlagUp},
			},
			want: true,
		},
		{
			name: "ethernet up with address",
			ifaces: []net.Interface{
				{Name: "enp3s0", Flags: net.FlagUp},
			},
			want: true,
		},
		{
			name: "wifi interface down",
			ifaces: []net.Interface{
				{Name: "wlan0", Flags: 0},
			},
			want: false,
		},
		{
			name: "wifi up without address",
			ifaces: []net.Interface{
				{Name: "wlan0", Flags: net.FlagUp},
			},
			noAddr: map[string]bool{"wlan0": true},
			want:   false,
		},
		{
			name: "only cellular tether",
			ifaces: []net.Interface{
				{Name: "wwan0", Flags: net.FlagUp},
				{Name: "usb0", Flags: net.FlagUp},
			},
			want: false,
		},
		{
			name: "loopback only",
			ifaces: []net.Interface{
				{Name: "lo", Flags: net.FlagUp | net.FlagLoopback},
			},
			want: false,
		},
		{
			name:   "no interfaces",
			ifaces: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checker := New(ModeAuto, nil, nil)
			checker.interfaces = func() ([]net.Interface, error) { return tt.ifaces, nil }
			checker.addrs = func(iface net.Interface) ([]net.Addr, error) {
				if tt.noAddr[iface.Name] {
					return nil, nil
				}
				return []net.Addr{&net.IPNet{IP: net.IPv4(192, 168, 1, 10)}}, nil
			}

			assert.Equal(t, tt.want, checker.IsOnTrustedNetwork())
		})
	}
}

func TestAutoModeEnumerationFailure(t *testing.T) {
	t.Parallel()

	checker := New(ModeAuto, nil, nil)
	checker.interfaces = func() ([]net.Interface, error) {
		return nil, errors.New("netlink unavailable")
	}

	assert.False(t, checker.IsOnTrustedNetwork(), "enumeration failures fall back to offline")
}

func TestCustomTrustedPrefixes(t *testing.T) {
	t.Parallel()

	checker := New(ModeAuto, []string{"tailscale"}, nil)
	checker.interfaces = func() ([]net.Interface, error) {
		return []net.Interface{
			{Name: "wlan0", Flags: net.FlagUp},
			{Name: "tailscale0", Flags: net.FlagUp},
		}, nil
	}
	checker.addrs = func(net.Interface) ([]net.Addr, error) {
		return []net.Addr{&net.IPNet{IP: net.IPv4(100, 64, 0, 1)}}, nil
	}

	assert.True(t, checker.IsOnTrustedNetwork())

	wifiOnly := New(ModeAuto, []string{"tailscale"}, nil)
	wifiOnly.interfaces = func() ([]net.Interface, error) {
		return []net.Interface{{Name: "wlan0", Flags: net.FlagUp}}, nil
	}
	assert.False(t, wifiOnly.IsOnTrustedNetwork(), "configured prefixes replace the defaults")
}
