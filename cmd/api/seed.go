package main

import (
	"fmt"
	"strconv"
	"strings"

	"insurance-claims-backend/internal/infrastructure/auth"
	useruc "insurance-claims-backend/internal/usecase/user"

	"github.com/spf13/cobra"
)

func seedUserCmd() *cobra.Command {
	var (
		in       useruc.CreateUserInput
		typeArgs []string
	)
	cmd := &cobra.Command{
		Use:   "seed-user",
		Short: "Create a user directly in the database",
		Long: `Create a user directly in the database. Used to bootstrap the first
checker, who can then manage everyone else over the API.

Examples:
  claims-api seed-user --username admin --email admin@example.com --password 's3cret-pass' --role checker
  claims-api seed-user --username alice --email alice@example.com --password 'alice-pass' --role claimant --claim-types 1,2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, raw := range typeArgs {
				id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
				if err != nil {
					return fmt.Errorf("invalid claim type id %q", raw)
				}
				in.ClaimTypeIDs = append(in.ClaimTypeIDs, id)
			}

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			uc := a.userUsecase(auth.NewTokens(a.cfg.JWTSecret, a.cfg.JWTTTL()))
			u, err := uc.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Username, u.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "login name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password (min 8 chars)")
	cmd.Flags().StringVar(&in.Role, "role", "", "claimant, reviewer or checker")
	cmd.Flags().StringSliceVar(&typeArgs, "claim-types", nil, "claim type ids for a claimant (default: all active)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
