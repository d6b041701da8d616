package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/bnema/teamsync-cli/internal/application"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newSyncCmd(app *app) *cobra.Command {
	var watch bool
	var plain bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay pending local changes against the server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watch {
				return runSyncWatch(cmd, app)
			}
			return runSyncOnce(cmd, app, plain)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and sync on a schedule")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable the progress spinner")

	return cmd
}

func runSyncOnce(cmd *cobra.Command, app *app, plain bool) error {
	var report application.Report

	run := func(ctx context.Context) error {
		var err error
		report, err = app.reconciler.Run(ctx)
		return err
	}

	var err error
	if plain {
		err = run(cmd.Context())
	} else {
		err = runWithSyncSpinner(cmd.Context(), cmd.OutOrStdout(), run)
	}
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), reportLine(report))
	return nil
}

func runSyncWatch(cmd *cobra.Command, app *app) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schedule := fmt.Sprintf("@every %s", app.syncInterval)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Watching for pending changes (%s); press ctrl-c to stop\n", schedule)

	runner := cron.New()
	_, err := runner.AddFunc(schedule, func() {
		report, err := app.reconciler.Run(ctx)
		if err != nil {
			app.logger.Error("scheduled sync failed", "error", err)
			return
		}
		if report.Skipped || report.Synced > 0 || report.Failed > 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), reportLine(report))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sync: %w", err)
	}

	// One immediate pass so a short-lived watch still syncs.
	report, err := app.reconciler.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), reportLine(report))

	runner.Start()
	<-ctx.Done()

	stopCtx := runner.Stop()
	<-stopCtx.Done()
	return nil
}

func reportLine(report application.Report) string {
	if report.Skipped {
		return "Sync skipped: no trusted network connection"
	}
	if report.Synced == 0 && report.Failed == 0 {
		return "Nothing to sync"
	}
	if report.Failed > 0 {
		return fmt.Sprintf("Synced %d change(s), %d failed (will retry)", report.Synced, report.Failed)
	}
	return fmt.Sprintf("Synced %d change(s)", report.Synced)
}
