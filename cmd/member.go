package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/teamsync-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newMemberCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage team members",
	}

	cmd.AddCommand(
		newMemberAddCmd(app),
		newMemberUpdateCmd(app),
		newMemberRemoveCmd(app),
	)

	return cmd
}

func newMemberAddCmd(app *app) *cobra.Command {
	var teamID, email, name, role string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a member to a team",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseID(teamID)
			if err != nil {
				return err
			}

			result, err := app.coordinator.AddMember(cmd.Context(), id, email, name, parseRole(role))
			if err != nil {
				return err
			}

			printWriteOutcome(cmd, fmt.Sprintf("Added %s to team %s", result.Member.Email, formatID(id)), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&teamID, "team", "", "Team id")
	cmd.Flags().StringVar(&email, "email", "", "Member email")
	cmd.Flags().StringVar(&name, "name", "", "Member display name")
	cmd.Flags().StringVar(&role, "role", "MEMBER", "Member role (OWNER, ADMIN or MEMBER)")
	_ = cmd.MarkFlagRequired("team")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newMemberUpdateCmd(app *app) *cobra.Command {
	var email, name, role string

	cmd := &cobra.Command{
		Use:   "update <member-id>",
		Short: "Update a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			member, err := app.store.MemberByID(cmd.Context(), id)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("email") {
				member.Email = email
			}
			if cmd.Flags().Changed("name") {
				member.Name = name
			}
			if cmd.Flags().Changed("role") {
				member.Role = parseRole(role)
			}

			result, err := app.coordinator.UpdateMember(cmd.Context(), member)
			if err != nil {
				return err
			}

			printWriteOutcome(cmd, fmt.Sprintf("Updated member %s", result.Member.Email), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Member email")
	cmd.Flags().StringVar(&name, "name", "", "Member display name")
	cmd.Flags().StringVar(&role, "role", "", "Member role (OWNER, ADMIN or MEMBER)")

	return cmd
}

func newMemberRemoveCmd(app *app) *cobra.Command {
	var teamID string

	cmd := &cobra.Command{
		Use:   "remove <member-id>",
		Short: "Remove a member from a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := parseID(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(teamID)
			if err != nil {
				return err
			}

			if err := app.coordinator.RemoveMember(cmd.Context(), id, memberID); err != nil {
				if errors.Is(err, domain.ErrNetworkRequired) {
					return errors.New("removing a synced member requires a trusted network connection")
				}
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed member %s\n", formatID(memberID))
			return nil
		},
	}

	cmd.Flags().StringVar(&teamID, "team", "", "Team id")
	_ = cmd.MarkFlagRequired("team")

	return cmd
}

func parseRole(role string) domain.Role {
	return domain.Role(strings.ToUpper(strings.TrimSpace(role)))
}
