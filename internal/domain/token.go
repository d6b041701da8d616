package domain

import "strings"

// TokenPair is the persisted credential pair. Both tokens are opaque bearer
// strings; absence of a pair means the user is signed out.
type TokenPair struct {
	Access  string
	Refresh string
}

func (p TokenPair) Zero() bool {
	return strings.TrimSpace(p.Access) == "" && strings.TrimSpace(p.Refresh) == ""
}
