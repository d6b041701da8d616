package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/teamsync-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.net.IsOnTrustedNetwork() {
				return fmt.Errorf("sign in: %w", domain.ErrNetworkRequired)
			}

			if err := app.api.SignIn(cmd.Context(), email, password); err != nil {
				return fmt.Errorf("sign in: %w", err)
			}

			user, err := cacheCurrentUser(cmd, app)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newRegisterCmd(app *app) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.net.IsOnTrustedNetwork() {
				return fmt.Errorf("register: %w", domain.ErrNetworkRequired)
			}

			if err := app.api.SignUp(cmd.Context(), name, email, password); err != nil {
				return fmt.Errorf("register: %w", err)
			}

			user, err := cacheCurrentUser(cmd, app)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.tokens.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear tokens: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user from the local cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := app.store.CurrentUser(cmd.Context())
			if err != nil {
				if errors.Is(err, domain.ErrNotSignedIn) {
					return errors.New("not signed in")
				}
				return fmt.Errorf("load cached user: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}

// cacheCurrentUser fetches the profile and stores it so whoami keeps
// working offline.
func cacheCurrentUser(cmd *cobra.Command, app *app) (domain.User, error) {
	user, err := app.api.Me(cmd.Context())
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch profile: %w", err)
	}
	if err := app.store.SaveUser(cmd.Context(), user); err != nil {
		return domain.User{}, fmt.Errorf("cache profile: %w", err)
	}
	return user, nil
}
