package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Team is the local view of a remote team. ID is the server-assigned id once
// the record is synced; offline-created teams carry a negative placeholder id
// until the reconciler replays them.
type Team struct {
	ID         int64
	Name       string
	Department string
	ImageRef   string
	Synced     bool
	CreatedAt  int64
	UpdatedAt  int64
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("team name is required")
	}
	return nil
}

// TeamMember belongs to exactly one team. Deleting the team removes its
// members at the storage layer.
type TeamMember struct {
	ID        int64
	TeamID    int64
	Email     string
	Name      string
	Role      Role
	Synced    bool
	CreatedAt int64
	UpdatedAt int64
}

func (m TeamMember) Validate() error {
	if m.TeamID == 0 {
		return errors.New("member team id is required")
	}
	if strings.TrimSpace(m.Email) == "" {
		return errors.New("member email is required")
	}
	if !m.Role.Valid() {
		return fmt.Errorf("unsupported member role %q", m.Role)
	}
	return nil
}

type User struct {
	ID    int64
	Email string
	Name  string
}
