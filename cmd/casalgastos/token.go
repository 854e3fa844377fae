package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"casalgastos/internal/auth"
	"casalgastos/internal/config"
)

func tokenCmd() *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a session token for a user",
		Long: `Prints a signed session token for the given identity key. Paste it on the
login page, or send it as "Authorization: Bearer <token>".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if len(cfg.JWTSecret) < 16 {
				return errors.New("AUTH_JWT_SECRET must be at least 16 characters")
			}
			token, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer).Issue(args[0], email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email to embed in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
	return cmd
}
