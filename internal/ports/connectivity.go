package ports

// Connectivity answers whether the device currently sits on a trusted
// (wifi/ethernet-class, unmetered) network. Each call is a point-in-time
// check; callers re-check whenever connectivity could plausibly have changed.
type Connectivity interface {
	IsOnTrustedNetwork() bool
}
