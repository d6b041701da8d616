package application

import (
	"context"
	"fmt"

	"github.com/bnema/teamsync-cli/internal/domain"
	"github.com/bnema/teamsync-cli/internal/ports"
)

// TeamStatus is the read model for status rendering: a team, its members and
// how many of those records still await reconciliation.
type TeamStatus struct {
	Team    domain.Team
	Members []domain.TeamMember
	Pending int
}

// Overview assembles TeamStatus rows from the local store only; it never
// touches the network.
func Overview(ctx context.Context, store ports.TeamStore) ([]TeamStatus, error) {
	teams, err := store.Teams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list local teams: %w", err)
	}

	statuses := make([]TeamStatus, 0, len(teams))
	for _, team := range teams {
		members, err := store.MembersByTeam(ctx, team.ID)
		if err != nil {
			return nil, fmt.Errorf("list members of team %d: %w", team.ID, err)
		}

		pending := 0
		if !team.Synced {
			pending++
		}
		for _, member := range members {
			if !member.Synced {
				pending++
			}
		}

		statuses = append(statuses, TeamStatus{Team: team, Members: members, Pending: pending})
	}

	return statuses, nil
}
