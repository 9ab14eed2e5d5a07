package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/tiffin/app/pricing"
	"github.com/shashiranjanraj/tiffin/internal/kernel"
	"github.com/shashiranjanraj/tiffin/pkg/database"
	"github.com/shashiranjanraj/tiffin/pkg/storage"
	"github.com/shashiranjanraj/tiffin/pkg/ws"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"run", "start"},
		Short:   "Start the HTTP and gRPC servers with workers and scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, err := boot(ctx)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Serve(ctx)
		},
	}
}

// route:list builds the kernel over a throwaway in-memory database, so it
// needs no running services.
func routeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route:list",
		Short: "List the HTTP routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := database.Open("sqlite", "file::memory:")
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			disk, err := storage.NewLocalDisk(os.TempDir(), "")
			if err != nil {
				return err
			}
			k, err := kernel.NewHTTP(kernel.Deps{DB: db, Disk: disk, Hub: ws.NewHub(), Policy: pricing.DefaultPolicy()})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "METHOD\tPATH\tNAME")
			fmt.Fprintln(w, "------\t----\t----")
			for _, ri := range k.Routes() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
			}
			return w.Flush()
		},
	}
}
