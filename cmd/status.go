package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	statusadapter "github.com/bnema/teamsync-cli/internal/adapters/render/status"
	"github.com/bnema/teamsync-cli/internal/application"
	"github.com/bnema/teamsync-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show teams, members and pending sync state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := application.Overview(cmd.Context(), app.store)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(statuses)
			}

			signedInAs := ""
			user, err := app.store.CurrentUser(cmd.Context())
			switch {
			case err == nil:
				signedInAs = user.Email
			case !errors.Is(err, domain.ErrNotSignedIn):
				return fmt.Errorf("load cached user: %w", err)
			}

			rendered, err := app.statusRenderer(statuses, statusadapter.RenderOptions{
				Now:        app.now(),
				Online:     app.net.IsOnTrustedNetwork(),
				SignedInAs: signedInAs,
			})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")

	return cmd
}
