package domain

import "errors"

var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrMemberNotFound = errors.New("team member not found")
	ErrNotSignedIn    = errors.New("not signed in")
	ErrSessionExpired = errors.New("session expired")

	// ErrRemoteUnavailable marks a write that was persisted locally after the
	// remote call failed; the record stays unsynced until reconciliation.
	ErrRemoteUnavailable = errors.New("remote api unavailable, saved locally")

	// ErrNetworkRequired is returned for deletions attempted without trusted
	// connectivity. Deletions are never deferred.
	ErrNetworkRequired = errors.New("operation requires a trusted network connection")
)
