package api

import "github.com/bnema/teamsync-cli/internal/domain"

type teamPayload struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	ImageRef   string `json:"image_ref"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
}

func (p teamPayload) toDomain() domain.Team {
	return domain.Team{
		ID:         p.ID,
		Name:       p.Name,
		Department: p.Department,
		ImageRef:   p.ImageRef,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func teamRequest(team domain.Team) map[string]any {
	return map[string]any{
		"name":       team.Name,
		"department": team.Department,
		"image_ref":  team.ImageRef,
	}
}

type memberPayload struct {
	ID        int64  `json:"id"`
	TeamID    int64  `json:"team_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

func (p memberPayload) toDomain() domain.TeamMember {
	return domain.TeamMember{
		ID:        p.ID,
		TeamID:    p.TeamID,
		Email:     p.Email,
		Name:      p.Name,
		Role:      domain.Role(p.Role),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func memberRequest(member domain.TeamMember) map[string]any {
	return map[string]any{
		"email": member.Email,
		"name":  member.Name,
		"role":  string(member.Role),
	}
}

type userPayload struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (p userPayload) toDomain() domain.User {
	return domain.User{ID: p.ID, Email: p.Email, Name: p.Name}
}
