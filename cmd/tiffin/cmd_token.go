package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/tiffin/config"
	"github.com/shashiranjanraj/tiffin/pkg/auth"
)

// token:issue mints development tokens; it refuses to run in production.
func tokenIssueCmd() *cobra.Command {
	var user, role string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token:issue",
		Short: "Sign a bearer token for local testing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if config.IsProduction() {
				return errors.New("token:issue is disabled in production")
			}
			token, err := auth.GenerateTokenTTL(user, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (required)")
	cmd.Flags().StringVar(&role, "role", "customer", "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
