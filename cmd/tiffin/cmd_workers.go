package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/tiffin/config"
	"github.com/shashiranjanraj/tiffin/internal/server"
	"github.com/shashiranjanraj/tiffin/pkg/schedule"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

var boot = server.Boot

func queueWorkCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "queue:work",
		Short: "Process queued jobs until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, err := boot(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if workers < 1 {
				workers = config.QueueWorkers()
			}
			// Jobs publish to this process's hub, so only webhook delivery
			// reaches food makers from a standalone worker.
			go app.Hub.Run(ctx)

			fmt.Fprintf(cmd.OutOrStdout(), "Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
			err = app.Queue.Work(ctx, workers)
			fmt.Fprintln(cmd.OutOrStdout(), "Queue worker stopped.")
			return err
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent workers (default QUEUE_WORKERS)")
	return cmd
}

func scheduleRunCmd() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "schedule:run",
		Short: "Run the maintenance scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, err := boot(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			s := schedule.New()
			if err := app.Schedule(s); err != nil {
				return err
			}
			for _, t := range s.List() {
				fmt.Fprintln(cmd.OutOrStdout(), "  •", t)
			}

			if once {
				s.RunAll(ctx)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Scheduler started. Press Ctrl+C to stop.")
			s.Start(ctx)
			<-ctx.Done()
			s.Wait()
			fmt.Fprintln(cmd.OutOrStdout(), "Scheduler stopped.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run every task once and exit")
	return cmd
}
