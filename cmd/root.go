package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "teamsync",
		Short:         "teamsync: offline-first team management from the terminal",
		Long:          "teamsync manages teams and members against a remote server, keeps working when the network is untrusted or gone, and reconciles pending local changes once connectivity returns.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return app.Close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newTeamCmd(app),
		newMemberCmd(app),
		newSyncCmd(app),
		newStatusCmd(app),
	)

	return rootCmd
}
