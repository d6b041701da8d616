package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bnema/teamsync-cli/internal/domain"
	"github.com/bnema/teamsync-cli/internal/ports"
)

type fakeStore struct {
	mu      sync.Mutex
	teams   map[int64]domain.Team
	members map[int64]domain.TeamMember
	user    domain.User
	hasUser bool

	upsertTeamErr   error
	upsertMemberErr error
}

var _ ports.TeamStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		teams:   make(map[int64]domain.Team),
		members: make(map[int64]domain.TeamMember),
	}
}

func (s *fakeStore) UpsertTeam(_ context.Context, team domain.Team) error {
	if s.upsertTeamErr != nil {
		return s.upsertTeamErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.ID] = team
	return nil
}

func (s *fakeStore) TeamByID(_ context.Context, id int64) (domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[id]
	if !ok {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	return team, nil
}

func (s *fakeStore) Teams(_ context.Context) ([]domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	teams := make([]domain.Team, 0, len(s.teams))
	for _, team := range s.teams {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (s *fakeStore) UnsyncedTeams(_ context.Context) ([]domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	teams := make([]domain.Team, 0)
	for _, team := range s.teams {
		if !team.Synced {
			teams = append(teams, team)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (s *fakeStore) MarkTeamSynced(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[id]
	if !ok {
		return domain.ErrTeamNotFound
	}
	team.Synced = true
	s.teams[id] = team
	return nil
}

func (s *fakeStore) ReplaceTeamID(_ context.Context, oldID, newID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[oldID]
	if !ok {
		return domain.ErrTeamNotFound
	}
	delete(s.teams, oldID)
	team.ID = newID
	s.teams[newID] = team
	for id, member := range s.members {
		if member.TeamID == oldID {
			member.TeamID = newID
			s.members[id] = member
		}
	}
	return nil
}

func (s *fakeStore) DeleteTeam(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.teams, id)
	for memberID, member := range s.members {
		if member.TeamID == id {
			delete(s.members, memberID)
		}
	}
	return nil
}

func (s *fakeStore) UpsertMember(_ context.Context, member domain.TeamMember) error {
	if s.upsertMemberErr != nil {
		return s.upsertMemberErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[member.ID] = member
	return nil
}

func (s *fakeStore) MemberByID(_ context.Context, id int64) (domain.TeamMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[id]
	if !ok {
		return domain.TeamMember{}, domain.ErrMemberNotFound
	}
	return member, nil
}

func (s *fakeStore) MembersByTeam(_ context.Context, teamID int64) ([]domain.TeamMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make([]domain.TeamMember, 0)
	for _, member := range s.members {
		if member.TeamID == teamID {
			members = append(members, member)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (s *fakeStore) UnsyncedMembers(_ context.Context) ([]domain.TeamMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make([]domain.TeamMember, 0)
	for _, member := range s.members {
		if !member.Synced {
			members = append(members, member)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (s *fakeStore) MarkMemberSynced(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[id]
	if !ok {
		return domain.ErrMemberNotFound
	}
	member.Synced = true
	s.members[id] = member
	return nil
}

func (s *fakeStore) ReplaceMemberID(_ context.Context, oldID, newID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[oldID]
	if !ok {
		return domain.ErrMemberNotFound
	}
	delete(s.members, oldID)
	member.ID = newID
	s.members[newID] = member
	return nil
}

func (s *fakeStore) DeleteMember(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, id)
	return nil
}

func (s *fakeStore) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.hasUser = true
	return nil
}

func (s *fakeStore) CurrentUser(_ context.Context) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasUser {
		return domain.User{}, domain.ErrNotSignedIn
	}
	return s.user, nil
}

func (s *fakeStore) Watch(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

// fakeAPI records calls and assigns sequential server ids starting at 100.
type fakeAPI struct {
	mu     sync.Mutex
	nextID int64
	err    error

	createTeamCalls   int
	updateTeamCalls   int
	deleteTeamCalls   int
	addMemberCalls    int
	updateMemberCalls int
	removeMemberCalls int
	teamByIDCalls     int

	teams map[int64]domain.Team
}

var _ ports.TeamAPI = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 100, teams: make(map[int64]domain.Team)}
}

func (a *fakeAPI) assignID() int64 {
	id := a.nextID
	a.nextID++
	return id
}

func (a *fakeAPI) CreateTeam(_ context.Context, team domain.Team) (domain.Team, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.createTeamCalls++
	if a.err != nil {
		return domain.Team{}, a.err
	}
	team.ID = a.assignID()
	a.teams[team.ID] = team
	return team, nil
}

func (a *fakeAPI) UpdateTeam(_ context.Context, team domain.Team) (domain.Team, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.updateTeamCalls++
	if a.err != nil {
		return domain.Team{}, a.err
	}
	a.teams[team.ID] = team
	return team, nil
}

func (a *fakeAPI) DeleteTeam(_ context.Context, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleteTeamCalls++
	if a.err != nil {
		return a.err
	}
	delete(a.teams, id)
	return nil
}

func (a *fakeAPI) TeamByID(_ context.Context, id int64) (domain.Team, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.teamByIDCalls++
	if a.err != nil {
		return domain.Team{}, a.err
	}
	team, ok := a.teams[id]
	if !ok {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	return team, nil
}

func (a *fakeAPI) Teams(_ context.Context) ([]domain.Team, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	teams := make([]domain.Team, 0, len(a.teams))
	for _, team := range a.teams {
		teams = append(teams, team)
	}
	return teams, nil
}

func (a *fakeAPI) AddMember(_ context.Context, member domain.TeamMember) (domain.TeamMember, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.addMemberCalls++
	if a.err != nil {
		return domain.TeamMember{}, a.err
	}
	member.ID = a.assignID()
	return member, nil
}

func (a *fakeAPI) UpdateMember(_ context.Context, member domain.TeamMember) (domain.TeamMember, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.updateMemberCalls++
	if a.err != nil {
		return domain.TeamMember{}, a.err
	}
	return member, nil
}

func (a *fakeAPI) RemoveMember(_ context.Context, _, _ int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removeMemberCalls++
	return a.err
}

func (a *fakeAPI) Me(_ context.Context) (domain.User, error) {
	if a.err != nil {
		return domain.User{}, a.err
	}
	return domain.User{ID: 1, Email: "me@example.com"}, nil
}

type fakeNet struct {
	online bool
}

func (n *fakeNet) IsOnTrustedNetwork() bool {
	return n.online
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}
