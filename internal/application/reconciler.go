package application

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/teamsync-cli/internal/domain"
	"github.com/bnema/teamsync-cli/internal/ports"
	"github.com/charmbracelet/log"
)

// Report summarizes one reconciliation pass.
type Report struct {
	Synced  int
	Failed  int
	Skipped bool
}

// Reconciler replays unsynced local records against the remote API. A record
// that fails to replay stays unsynced for the next run; there is no retry
// budget here, the scheduler decides when to run again.
type Reconciler struct {
	store  ports.TeamStore
	api    ports.TeamAPI
	net    ports.Connectivity
	logger *log.Logger
}

func NewReconciler(store ports.TeamStore, api ports.TeamAPI, net ports.Connectivity, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Reconciler{
		store:  store,
		api:    api,
		net:    net,
		logger: logger,
	}
}

// Run drains unsynced teams, then unsynced members. Teams go first so that a
// member created under a placeholder team id sees the rewritten team id
// before it is replayed.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	if !r.net.IsOnTrustedNetwork() {
		r.logger.Debug("skipping reconciliation, no trusted network")
		return Report{Skipped: true}, nil
	}

	var report Report

	teams, err := r.store.UnsyncedTeams(ctx)
	if err != nil {
		return report, fmt.Errorf("load unsynced teams: %w", err)
	}
	for _, team := range teams {
		if err := r.reconcileTeam(ctx, team); err != nil {
			r.logger.Warn("team reconciliation failed", "team", team.ID, "err", err)
			report.Failed++
			continue
		}
		report.Synced++
	}

	members, err := r.store.UnsyncedMembers(ctx)
	if err != nil {
		return report, fmt.Errorf("load unsynced members: %w", err)
	}
	for _, member := range members {
		if err := r.reconcileMember(ctx, member); err != nil {
			r.logger.Warn("member reconciliation failed", "member", member.ID, "err", err)
			report.Failed++
			continue
		}
		report.Synced++
	}

	return report, nil
}

func (r *Reconciler) reconcileTeam(ctx context.Context, team domain.Team) error {
	if domain.IsPlaceholderID(team.ID) {
		created, err := r.api.CreateTeam(ctx, team)
		if err != nil {
			return fmt.Errorf("replay team create: %w", err)
		}
		if err := r.store.ReplaceTeamID(ctx, team.ID, created.ID); err != nil {
			return fmt.Errorf("adopt server team id: %w", err)
		}
		if err := r.store.MarkTeamSynced(ctx, created.ID); err != nil {
			return fmt.Errorf("mark team synced: %w", err)
		}
		r.logger.Info("synced offline-created team", "placeholder", team.ID, "id", created.ID)
		return nil
	}

	if _, err := r.api.UpdateTeam(ctx, team); err != nil {
		return fmt.Errorf("replay team update: %w", err)
	}
	if err := r.store.MarkTeamSynced(ctx, team.ID); err != nil {
		return fmt.Errorf("mark team synced: %w", err)
	}
	return nil
}

func (r *Reconciler) reconcileMember(ctx context.Context, member domain.TeamMember) error {
	// A member whose team is still unsynced cannot be replayed: its team id
	// is not yet known to the server. The team's own failure was already
	// counted; leave the member for the next run.
	if domain.IsPlaceholderID(member.TeamID) {
		return fmt.Errorf("team %d not yet synced", member.TeamID)
	}

	if domain.IsPlaceholderID(member.ID) {
		added, err := r.api.AddMember(ctx, member)
		if err != nil {
			return fmt.Errorf("replay member add: %w", err)
		}
		if err := r.store.ReplaceMemberID(ctx, member.ID, added.ID); err != nil {
			return fmt.Errorf("adopt server member id: %w", err)
		}
		if err := r.store.MarkMemberSynced(ctx, added.ID); err != nil {
			return fmt.Errorf("mark member synced: %w", err)
		}
		r.logger.Info("synced offline-created member", "placeholder", member.ID, "id", added.ID)
		return nil
	}

	if _, err := r.api.UpdateMember(ctx, member); err != nil {
		return fmt.Errorf("replay member update: %w", err)
	}
	if err := r.store.MarkMemberSynced(ctx, member.ID); err != nil {
		return fmt.Errorf("mark member synced: %w", err)
	}
	return nil
}
