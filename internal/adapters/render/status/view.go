// Package status renders the local team overview for the status command.
// Everything shown here comes from the local store; the badges mark which
// records still wait for reconciliation with the server.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/teamsync-cli/internal/application"
	"github.com/bnema/teamsync-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	// Now anchors relative timestamps; zero hides them.
	Now time.Time
	// Online reflects the connectivity gate at render time.
	Online bool
	// SignedInAs is the cached user's email, empty when signed out.
	SignedInAs string
}

func renderView(statuses []application.TeamStatus, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Teamsync Status"),
		s.header.Render(headerLine(statuses, opts)),
	}

	if len(statuses) == 0 {
		lines = append(lines, s.empty.Render("No teams in the local store."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, status := range statuses {
		lines = append(lines, s.section.Render(renderTeam(status, opts, s)))
	}

	if pending := totalPending(statuses); pending > 0 {
		note := fmt.Sprintf("%d change(s) pending sync", pending)
		if !opts.Online {
			note += "; will sync when back on a trusted network"
		}
		lines = append(lines, s.section.Render(s.pending.Render(note)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerLine(statuses []application.TeamStatus, opts RenderOptions) string {
	network := "offline"
	if opts.Online {
		network = "online"
	}

	parts := []string{
		fmt.Sprintf("teams: %d", len(statuses)),
		"network: " + network,
	}
	if opts.SignedInAs != "" {
		parts = append(parts, "signed in as "+opts.SignedInAs)
	}

	return strings.Join(parts, " | ")
}

func renderTeam(status application.TeamStatus, opts RenderOptions, s styles) string {
	parts := []string{
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.team.Render(teamTitle(status.Team)),
			" ",
			syncBadge(status.Team.Synced, s),
		),
		s.detail.Render(teamDetail(status, opts)),
	}

	for _, member := range status.Members {
		parts = append(parts, renderMember(member, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderMember(member domain.TeamMember, s styles) string {
	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.member.Render("  "+member.Email),
		" ",
		s.role.Render(string(member.Role)),
	)
	if !member.Synced {
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, " ", s.pending.Render("[pending]"))
	}

	return line
}

func teamTitle(team domain.Team) string {
	name := strings.TrimSpace(team.Name)
	if team.Department != "" {
		return fmt.Sprintf("%s (%s)", name, team.Department)
	}
	return name
}

func teamDetail(status application.TeamStatus, opts RenderOptions) string {
	parts := []string{
		idLabel(status.Team.ID),
		fmt.Sprintf("%d member(s)", len(status.Members)),
	}
	if updated := formatUpdatedRelative(status.Team.UpdatedAt, opts.Now); updated != "" {
		parts = append(parts, updated)
	}

	return "  " + strings.Join(parts, " | ")
}

func idLabel(id int64) string {
	if domain.IsPlaceholderID(id) {
		return "id pending"
	}
	return fmt.Sprintf("id %d", id)
}

func syncBadge(synced bool, s styles) string {
	if synced {
		return s.synced.Render("[synced]")
	}
	return s.pending.Render("[pending]")
}

func formatUpdatedRelative(updatedAt int64, now time.Time) string {
	if updatedAt == 0 || now.IsZero() {
		return ""
	}

	elapsed := now.Sub(time.UnixMilli(updatedAt))
	switch {
	case elapsed < time.Minute:
		return "updated just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("updated %dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("updated %dh ago", int(elapsed.Hours()))
	default:
		return "updated " + time.UnixMilli(updatedAt).Format("02 Jan 15:04")
	}
}

func totalPending(statuses []application.TeamStatus) int {
	total := 0
	for _, status := range statuses {
		total += status.Pending
	}
	return total
}
