// Command tiffin runs the Moms' Tiffin API and its maintenance tasks.
//
//	tiffin serve            # HTTP + gRPC + workers + scheduler
//	tiffin migrate          # apply pending migrations
//	tiffin migrate:rollback
//	tiffin migrate:status
//	tiffin seed             # demo data
//	tiffin route:list
//	tiffin queue:work -w 8  # workers only
//	tiffin schedule:run     # scheduler only
//	tiffin token:issue --user cust-1 --role customer
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/shashiranjanraj/tiffin/database/migrations"
	_ "github.com/shashiranjanraj/tiffin/database/seeders"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tiffin",
		Short:         "Moms' Tiffin order service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd(), routeListCmd())
	root.AddCommand(migrateCmd(), migrateRollbackCmd(), migrateStatusCmd(), seedCmd())
	root.AddCommand(queueWorkCmd(), scheduleRunCmd())
	root.AddCommand(tokenIssueCmd())
	return root
}
