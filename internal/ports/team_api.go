package ports

import (
	"context"

	"github.com/bnema/teamsync-cli/internal/domain"
)

// TeamAPI is the remote backend. Returned entities carry server-assigned ids.
type TeamAPI interface {
	CreateTeam(ctx context.Context, team domain.Team) (domain.Team, error)
	UpdateTeam(ctx context.Context, team domain.Team) (domain.Team, error)
	DeleteTeam(ctx context.Context, id int64) error
	TeamByID(ctx context.Context, id int64) (domain.Team, error)
	Teams(ctx context.Context) ([]domain.Team, error)

	AddMember(ctx context.Context, member domain.TeamMember) (domain.TeamMember, error)
	UpdateMember(ctx context.Context, member domain.TeamMember) (domain.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, memberID int64) error

	Me(ctx context.Context) (domain.User, error)
}
