package ports

import (
	"context"

	"github.com/bnema/teamsync-cli/internal/domain"
)

// TeamStore is the local mutation store. Reads reflect every write made
// through the same store; Watch lets the presentation layer observe changes
// without polling. Deleting a team cascades to its members at the storage
// layer.
type TeamStore interface {
	UpsertTeam(ctx context.Context, team domain.Team) error
	TeamByID(ctx context.Context, id int64) (domain.Team, error)
	Teams(ctx context.Context) ([]domain.Team, error)
	UnsyncedTeams(ctx context.Context) ([]domain.Team, error)
	MarkTeamSynced(ctx context.Context, id int64) error
	// ReplaceTeamID rewrites a placeholder id with the server-assigned one,
	// cascading to member references.
	ReplaceTeamID(ctx context.Context, oldID, newID int64) error
	DeleteTeam(ctx context.Context, id int64) error

	UpsertMember(ctx context.Context, member domain.TeamMember) error
	MemberByID(ctx context.Context, id int64) (domain.TeamMember, error)
	MembersByTeam(ctx context.Context, teamID int64) ([]domain.TeamMember, error)
	UnsyncedMembers(ctx context.Context) ([]domain.TeamMember, error)
	MarkMemberSynced(ctx context.Context, id int64) error
	ReplaceMemberID(ctx context.Context, oldID, newID int64) error
	DeleteMember(ctx context.Context, id int64) error

	SaveUser(ctx context.Context, user domain.User) error
	CurrentUser(ctx context.Context) (domain.User, error)

	// Watch returns a channel that receives a tick after every successful
	// write until ctx is done. Ticks may be coalesced; receivers re-read the
	// store for current state.
	Watch(ctx context.Context) <-chan struct{}
}
