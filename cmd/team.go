package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/teamsync-cli/internal/application"
	"github.com/bnema/teamsync-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newTeamCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage teams",
	}

	cmd.AddCommand(
		newTeamCreateCmd(app),
		newTeamUpdateCmd(app),
		newTeamDeleteCmd(app),
		newTeamListCmd(app),
		newTeamShowCmd(app),
	)

	return cmd
}

func newTeamCreateCmd(app *app) *cobra.Command {
	var name, department, imageRef string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a team",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := app.coordinator.CreateTeam(cmd.Context(), name, department, imageRef)
			if err != nil {
				return err
			}

			printWriteOutcome(cmd, fmt.Sprintf("Created team %q", result.Team.Name), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Team name")
	cmd.Flags().StringVar(&department, "department", "", "Department the team belongs to")
	cmd.Flags().StringVar(&imageRef, "image", "", "Team image reference")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newTeamUpdateCmd(app *app) *cobra.Command {
	var name, department, imageRef string

	cmd := &cobra.Command{
		Use:   "update <team-id>",
		Short: "Update a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			team, err := app.store.TeamByID(cmd.Context(), id)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("name") {
				team.Name = name
			}
			if cmd.Flags().Changed("department") {
				team.Department = department
			}
			if cmd.Flags().Changed("image") {
				team.ImageRef = imageRef
			}

			result, err := app.coordinator.UpdateTeam(cmd.Context(), team)
			if err != nil {
				return err
			}

			printWriteOutcome(cmd, fmt.Sprintf("Updated team %q", result.Team.Name), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Team name")
	cmd.Flags().StringVar(&department, "department", "", "Department the team belongs to")
	cmd.Flags().StringVar(&imageRef, "image", "", "Team image reference")

	return cmd
}

func newTeamDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <team-id>",
		Short: "Delete a team and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := app.coordinator.DeleteTeam(cmd.Context(), id); err != nil {
				if errors.Is(err, domain.ErrNetworkRequired) {
					return errors.New("deleting a synced team requires a trusted network connection")
				}
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted team %d\n", id)
			return nil
		},
	}
}

func newTeamListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List teams from the local store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			teams, err := app.store.Teams(cmd.Context())
			if err != nil {
				return err
			}

			if len(teams) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No teams.")
				return nil
			}

			for _, team := range teams {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), teamLine(team))
			}
			return nil
		},
	}
}

func newTeamShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <team-id>",
		Short: "Show a team and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			team, err := app.store.TeamByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			members, err := app.store.MembersByTeam(cmd.Context(), team.ID)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), teamLine(team))
			for _, member := range members {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", memberLine(member))
			}
			return nil
		},
	}
}

func teamLine(team domain.Team) string {
	line := fmt.Sprintf("%s  %s", formatID(team.ID), team.Name)
	if team.Department != "" {
		line += fmt.Sprintf(" (%s)", team.Department)
	}
	if !team.Synced {
		line += "  [pending sync]"
	}
	return line
}

func memberLine(member domain.TeamMember) string {
	line := fmt.Sprintf("%s  %s  %s", formatID(member.ID), member.Email, member.Role)
	if !member.Synced {
		line += "  [pending sync]"
	}
	return line
}

func formatID(id int64) string {
	if domain.IsPlaceholderID(id) {
		return fmt.Sprintf("local:%d", -id)
	}
	return strconv.FormatInt(id, 10)
}

func parseID(arg string) (int64, error) {
	// Placeholder ids print as local:<millis>; accept that form back.
	negate := false
	if rest, ok := strings.CutPrefix(arg, "local:"); ok {
		arg = rest
		negate = true
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	if negate {
		id = -id
	}
	return id, nil
}

func printWriteOutcome(cmd *cobra.Command, what string, result application.WriteResult) {
	if result.Synced {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", what)
		return
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (saved locally, pending sync)\n", what)
	if result.RemoteErr != nil && !errors.Is(result.RemoteErr, domain.ErrRemoteUnavailable) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "remote write failed: %v\n", result.RemoteErr)
	}
}
