package application

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/teamsync-cli/internal/domain"
	"github.com/bnema/teamsync-cli/internal/ports"
	"github.com/charmbracelet/log"
)

// WriteResult reports how a mutation landed. Synced is false when the record
// was only persisted locally; RemoteErr carries the non-fatal reason
// (domain.ErrRemoteUnavailable) when an online write had to fall back to
// local persistence. The error return of each operation is reserved for
// local-store failures — an accepted offline write is a success.
type WriteResult struct {
	Team      domain.Team
	Member    domain.TeamMember
	Synced    bool
	RemoteErr error
}

// Coordinator decides, per mutation, between an immediate remote write and a
// local-only write with a deferred sync marker.
type Coordinator struct {
	store  ports.TeamStore
	api    ports.TeamAPI
	net    ports.Connectivity
	clock  ports.Clock
	ids    *domain.PlaceholderIDs
	state  *Signal[TeamState]
	logger *log.Logger
}

func NewCoordinator(store ports.TeamStore, api ports.TeamAPI, net ports.Connectivity, clock ports.Clock, logger *log.Logger) *Coordinator {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Coordinator{
		store:  store,
		api:    api,
		net:    net,
		clock:  clock,
		ids:    domain.NewPlaceholderIDs(clock.Now),
		state:  NewSignal(TeamState{}),
		logger: logger,
	}
}

// State exposes the observable team state for presentation layers.
func (c *Coordinator) State() *Signal[TeamState] {
	return c.state
}

func (c *Coordinator) CreateTeam(ctx context.Context, name, department, imageRef string) (WriteResult, error) {
	now := c.clock.Now().UnixMilli()
	team := domain.Team{
		Name:       name,
		Department: department,
		ImageRef:   imageRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := team.Validate(); err != nil {
		return WriteResult{}, err
	}

	c.publishLoading()

	if !c.net.IsOnTrustedNetwork() {
		team.ID = c.ids.Next()
		return c.acceptTeamLocally(ctx, team, nil)
	}

	created, err := c.api.CreateTeam(ctx, team)
	if err != nil {
		c.logger.Warn("create team remote call failed, deferring", "team", name, "err", err)
		team.ID = c.ids.Next()
		return c.acceptTeamLocally(ctx, team, fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err))
	}

	created.Synced = true
	if err := c.store.UpsertTeam(ctx, created); err != nil {
		c.publishErr(err)
		return WriteResult{}, fmt.Errorf("cache created team: %w", err)
	}

	c.publishCurrent(created)
	return WriteResult{Team: created, Synced: true}, nil
}

func (c *Coordinator) UpdateTeam(ctx context.Context, team domain.Team) (WriteResult, error) {
	if err := team.Validate(); err != nil {
		return WriteResult{}, err
	}
	team.UpdatedAt = c.clock.Now().UnixMilli()

	c.publishLoading()

	// Offline-created teams are unknown to the server; their updates stay
	// local until the reconciler creates them upstream.
	if !c.net.IsOnTrustedNetwork() || domain.IsPlaceholderID(team.ID) {
		return c.acceptTeamLocally(ctx, team, nil)
	}

	updated, err := c.api.UpdateTeam(ctx, team)
	if err != nil {
		c.logger.Warn("update team remote call failed, deferring", "team", team.ID, "err", err)
		return c.acceptTeamLocally(ctx, team, fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err))
	}

	updated.Synced = true
	if err := c.store.UpsertTeam(ctx, updated); err != nil {
		c.publishErr(err)
		return WriteResult{}, fmt.Errorf("cache updated team: %w", err)
	}

	c.publishCurrent(updated)
	return WriteResult{Team: updated, Synced: true}, nil
}

// DeleteTeam has no offline path: removing a record the server may still hold
// is never deferred.
func (c *Coordinator) DeleteTeam(ctx context.Context, id int64) error {
	c.publishLoading()

	// A team that only ever existed locally can be dropped without the
	// network; the server has never heard of it.
	if domain.IsPlaceholderID(id) {
		if err := c.store.DeleteTeam(ctx, id); err != nil {
			c.publishErr(err)
			return fmt.Errorf("delete local team: %w", err)
		}
		c.publishCurrent(domain.Team{})
		return nil
	}

	if !c.net.IsOnTrustedNetwork() {
		c.publishErr(domain.ErrNetworkRequired)
		return domain.ErrNetworkRequired
	}

	if err := c.api.DeleteTeam(ctx, id); err != nil {
		c.publishErr(err)
		return fmt.Errorf("delete team %d: %w", id, err)
	}
	if err := c.store.DeleteTeam(ctx, id); err != nil {
		c.publishErr(err)
		return fmt.Errorf("delete cached team %d: %w", id, err)
	}

	c.publishCurrent(domain.Team{})
	return nil
}

func (c *Coordinator) AddMember(ctx context.Context, teamID int64, email, name string, role domain.Role) (WriteResult, error) {
	now := c.clock.Now().UnixMilli()
	member := domain.TeamMember{
		TeamID:    teamID,
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := member.Validate(); err != nil {
		return WriteResult{}, err
	}

	c.publishLoading()

	if !c.net.IsOnTrustedNetwork() || domain.IsPlaceholderID(teamID) {
		member.ID = c.ids.Next()
		return c.acceptMemberLocally(ctx, member, nil)
	}

	added, err := c.api.AddMember(ctx, member)
	if err != nil {
		c.logger.Warn("add member remote call failed, deferring", "team", teamID, "email", email, "err", err)
		member.ID = c.ids.Next()
		return c.acceptMemberLocally(ctx, member, fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err))
	}

	added.Synced = true
	if err := c.store.UpsertMember(ctx, added); err != nil {
		c.publishErr(err)
		return WriteResult{}, fmt.Errorf("cache added member: %w", err)
	}

	c.reloadTeam(ctx, teamID)
	return WriteResult{Member: added, Synced: true}, nil
}

func (c *Coordinator) UpdateMember(ctx context.Context, member domain.TeamMember) (WriteResult, error) {
	if err := member.Validate(); err != nil {
		return WriteResult{}, err
	}
	member.UpdatedAt = c.clock.Now().UnixMilli()

	c.publishLoading()

	if !c.net.IsOnTrustedNetwork() || domain.IsPlaceholderID(member.ID) {
		return c.acceptMemberLocally(ctx, member, nil)
	}

	updated, err := c.api.UpdateMember(ctx, member)
	if err != nil {
		c.logger.Warn("update member remote call failed, deferring", "member", member.ID, "err", err)
		return c.acceptMemberLocally(ctx, member, fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err))
	}

	updated.Synced = true
	if err := c.store.UpsertMember(ctx, updated); err != nil {
		c.publishErr(err)
		return WriteResult{}, fmt.Errorf("cache updated member: %w", err)
	}

	c.reloadTeam(ctx, updated.TeamID)
	return WriteResult{Member: updated, Synced: true}, nil
}

// RemoveMember requires connectivity, mirroring DeleteTeam. The one
// exception is a member created offline and never synced: it is deleted
// locally since no remote record exists.
func (c *Coordinator) RemoveMember(ctx context.Context, teamID, memberID int64) error {
	c.publishLoading()

	if domain.IsPlaceholderID(memberID) {
		if err := c.store.DeleteMember(ctx, memberID); err != nil {
			c.publishErr(err)
			return fmt.Errorf("delete local member: %w", err)
		}
		c.reloadTeam(ctx, teamID)
		return nil
	}

	if !c.net.IsOnTrustedNetwork() {
		c.publishErr(domain.ErrNetworkRequired)
		return domain.ErrNetworkRequired
	}

	if err := c.api.RemoveMember(ctx, teamID, memberID); err != nil {
		c.publishErr(err)
		return fmt.Errorf("remove member %d: %w", memberID, err)
	}
	if err := c.store.DeleteMember(ctx, memberID); err != nil {
		c.publishErr(err)
		return fmt.Errorf("delete cached member %d: %w", memberID, err)
	}

	c.reloadTeam(ctx, teamID)
	return nil
}

// RefreshTeam reloads a team, remote-first when connectivity allows, and
// publishes it as the current team. Remote failures fall back to the local
// copy.
func (c *Coordinator) RefreshTeam(ctx context.Context, id int64) (domain.Team, error) {
	if c.net.IsOnTrustedNetwork() && !domain.IsPlaceholderID(id) {
		team, err := c.api.TeamByID(ctx, id)
		if err == nil {
			team.Synced = true
			if err := c.store.UpsertTeam(ctx, team); err != nil {
				return domain.Team{}, fmt.Errorf("cache refreshed team: %w", err)
			}
			c.publishCurrent(team)
			return team, nil
		}
		c.logger.Debug("remote team reload failed, using local copy", "team", id, "err", err)
	}

	team, err := c.store.TeamByID(ctx, id)
	if err != nil {
		c.publishErr(err)
		return domain.Team{}, err
	}

	c.publishCurrent(team)
	return team, nil
}

func (c *Coordinator) acceptTeamLocally(ctx context.Context, team domain.Team, remoteErr error) (WriteResult, error) {
	team.Synced = false
	if err := c.store.UpsertTeam(ctx, team); err != nil {
		c.publishErr(err)
		return WriteResult{}, fmt.Errorf("persist team locally: %w", err)
	}

	c.publishCurrent(team)
	return WriteResult{Team: team, Synced: false, RemoteErr: remoteErr}, nil
}

func (c *Coordinator) acceptMemberLocally(ctx context.Context, member domain.TeamMember, remoteErr error) (WriteResult, error) {
	member.Synced = false
	if err := c.store.UpsertMember(ctx, member); err != nil {
		c.publishErr(err)
		return WriteResult{}, fmt.Errorf("persist member locally: %w", err)
	}

	c.reloadTeam(ctx, member.TeamID)
	return WriteResult{Member: member, Synced: false, RemoteErr: remoteErr}, nil
}

// reloadTeam is the best-effort aggregate reload that follows every member
// mutation; failures only affect the published state, never the mutation
// outcome.
func (c *Coordinator) reloadTeam(ctx context.Context, teamID int64) {
	if _, err := c.RefreshTeam(ctx, teamID); err != nil {
		c.logger.Debug("team reload after mutation failed", "team", teamID, "err", err)
	}
}

func (c *Coordinator) publishLoading() {
	s := c.state.Get()
	s.Loading = true
	s.Err = nil
	c.state.Set(s)
}

func (c *Coordinator) publishCurrent(team domain.Team) {
	current := &team
	if team.ID == 0 {
		current = nil
	}
	c.state.Set(TeamState{Current: current})
}

func (c *Coordinator) publishErr(err error) {
	s := c.state.Get()
	s.Loading = false
	s.Err = err
	c.state.Set(s)
}
